package terminal

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/johnconnor-sec/xspin-go/internal/errors"
)

func TestEraseSequence(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{"zero still erases one row", 0, "\x1b[1G\x1b[2K\x1b[1G"},
		{"negative behaves like zero", -3, "\x1b[1G\x1b[2K\x1b[1G"},
		{"one row", 1, "\x1b[1G\x1b[2K\x1b[1G"},
		{"three rows", 3, "\x1b[1G\x1b[2K\x1b[1G\x1b[1A\x1b[2K\x1b[1G\x1b[1A\x1b[2K\x1b[1G"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EraseSequence(tt.n); got != tt.want {
				t.Errorf("EraseSequence(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestEraseSequence_MovesUpOncePerExtraRow(t *testing.T) {
	for n := 1; n <= 20; n++ {
		seq := EraseSequence(n)
		if got := strings.Count(seq, seqCursorUp); got != n-1 {
			t.Errorf("n=%d: %d cursor-up moves, want %d", n, got, n-1)
		}
		if got := strings.Count(seq, seqEraseLine); got != n {
			t.Errorf("n=%d: %d line erases, want %d", n, got, n)
		}
	}
}

func TestErase_WritesSequence(t *testing.T) {
	var buf bytes.Buffer
	if err := Erase(&buf, 2); err != nil {
		t.Fatalf("Erase() error = %v", err)
	}
	if buf.String() != EraseSequence(2) {
		t.Errorf("Erase() wrote %q", buf.String())
	}
}

func TestColumns_Fallback(t *testing.T) {
	if got := Columns(nil); got != FallbackColumns {
		t.Errorf("Columns(nil) = %d, want %d", got, FallbackColumns)
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	defer r.Close()
	defer w.Close()

	if got := Columns(w); got != FallbackColumns {
		t.Errorf("Columns(pipe) = %d, want %d", got, FallbackColumns)
	}
	if got := (Geometry{File: w}).Columns(); got != FallbackColumns {
		t.Errorf("Geometry.Columns() = %d, want %d", got, FallbackColumns)
	}
}

func TestEnabled_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	defer r.Close()
	defer w.Close()

	if Enabled(w) {
		t.Error("Enabled() should be false for a pipe")
	}
	if Enabled(nil) {
		t.Error("Enabled(nil) should be false")
	}
}

func TestStreamByName(t *testing.T) {
	tests := []struct {
		name    string
		want    *os.File
		wantErr bool
	}{
		{"stdout", os.Stdout, false},
		{"stderr", os.Stderr, false},
		{"printer", nil, true},
	}

	for _, tt := range tests {
		got, err := StreamByName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("StreamByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("StreamByName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if f, err := StreamByName("auto"); err != nil || (f != os.Stdout && f != os.Stderr) {
		t.Errorf("StreamByName(auto) = %v, %v", f, err)
	}
	if _, err := StreamByName("printer"); !errors.IsType(err, errors.TerminalUnavailable) {
		t.Errorf("StreamByName(printer) error = %v, want a terminal_unavailable error", err)
	}
}

func TestCursor(t *testing.T) {
	unknown := NewCursor("no-such-terminal-xyz")
	if unknown.HideSequence() != defaultHideCursor || unknown.ShowSequence() != defaultShowCursor {
		t.Errorf("unknown terminal should use fallback sequences, got %q / %q",
			unknown.HideSequence(), unknown.ShowSequence())
	}

	xterm := NewCursor("xterm")
	if !strings.Contains(xterm.HideSequence(), "?25l") {
		t.Errorf("xterm hide = %q", xterm.HideSequence())
	}
	if !strings.Contains(xterm.ShowSequence(), "?25h") {
		t.Errorf("xterm show = %q", xterm.ShowSequence())
	}

	var buf bytes.Buffer
	if err := xterm.Hide(&buf); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}
	if err := xterm.Show(&buf); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if got, want := buf.String(), xterm.HideSequence()+xterm.ShowSequence(); got != want {
		t.Errorf("Hide+Show wrote %q, want %q", got, want)
	}
}

func TestSession_NonTerminal(t *testing.T) {
	in, inW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	defer in.Close()
	defer inW.Close()

	out, err := os.CreateTemp(t.TempDir(), "session")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	defer out.Close()

	s := NewSession(in, out)
	s.Cursor = Cursor{}

	if err := s.Before(); err != nil {
		t.Fatalf("Before() error = %v", err)
	}
	if err := s.Before(); err != nil {
		t.Fatalf("second Before() error = %v", err)
	}
	if err := s.After(); err != nil {
		t.Fatalf("After() error = %v", err)
	}
	if err := s.After(); err != nil {
		t.Fatalf("second After() error = %v", err)
	}

	data, err := os.ReadFile(out.Name())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	got := string(data)
	if strings.Count(got, defaultHideCursor) != 1 || strings.Count(got, defaultShowCursor) != 1 {
		t.Errorf("session output = %q, want one hide and one show", got)
	}
	if strings.Index(got, defaultHideCursor) > strings.Index(got, defaultShowCursor) {
		t.Errorf("cursor shown before it was hidden: %q", got)
	}
}
