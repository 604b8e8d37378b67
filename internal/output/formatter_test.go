package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatter_Messages(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter(&buf)
	formatter.SetColorOutput(false)

	formatter.Success("built %d frames", 3)
	formatter.Warning("terminal is narrow")
	formatter.Error("render failed")
	formatter.Info("scheduler: %s", "thread")

	output := buf.String()
	for _, want := range []string{"✓ built 3 frames", "⚠ terminal is narrow", "✗ render failed", "ℹ scheduler: thread"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output %q does not contain %q", output, want)
		}
	}
}

func TestFormatter_QuietKeepsErrors(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter(&buf)
	formatter.SetColorOutput(false)
	formatter.SetLevel(LevelQuiet)

	formatter.Success("hidden")
	formatter.Info("hidden")
	formatter.Error("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("Quiet formatter printed non-error output: %q", output)
	}
	if !strings.Contains(output, "shown") {
		t.Errorf("Quiet formatter dropped an error: %q", output)
	}
}

func TestFormatter_Colorize(t *testing.T) {
	formatter := NewFormatter(&bytes.Buffer{})

	formatter.SetColorOutput(true)
	if got, want := formatter.colorize("ok", ColorGreen, StyleBold), "\033[1;32mok\033[0m"; got != want {
		t.Errorf("colorize() = %q, want %q", got, want)
	}
	if got := formatter.colorize("plain", ColorReset, StyleNormal); got != "plain" {
		t.Errorf("colorize() with no codes = %q, want plain text", got)
	}

	formatter.SetColorOutput(false)
	if got := formatter.SuccessText("done"); got != "✓ done" {
		t.Errorf("SuccessText() without color = %q", got)
	}
}

func TestColorSupport_Env(t *testing.T) {
	t.Setenv("FORCE_COLOR", "")
	t.Setenv("NO_COLOR", "1")
	if isColorSupported(&bytes.Buffer{}) {
		t.Error("NO_COLOR should disable color")
	}

	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "1")
	if !isColorSupported(&bytes.Buffer{}) {
		t.Error("FORCE_COLOR should enable color for any writer")
	}

	t.Setenv("FORCE_COLOR", "")
	t.Setenv("TERM", "xterm-256color")
	if isColorSupported(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}

func TestParseTint(t *testing.T) {
	tests := []struct {
		in      string
		apply   string
		wantErr bool
	}{
		{"", "x", false},
		{"none", "x", false},
		{"cyan", "\033[36mx\033[0m", false},
		{"Bright-Red", "\033[91mx\033[0m", false},
		{"#5fafff", "\033[38;2;95;175;255mx\033[0m", false},
		{"#fff", "\033[38;2;255;255;255mx\033[0m", false},
		{"#zzzzzz", "", true},
		{"chartreuse", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tint, err := ParseTint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := tint.Apply("x"); got != tt.apply {
				t.Errorf("Apply() = %q, want %q", got, tt.apply)
			}
		})
	}
}

func TestFormatter_Tint(t *testing.T) {
	tint, err := ParseTint("green")
	if err != nil {
		t.Fatal(err)
	}

	formatter := NewFormatter(&bytes.Buffer{})
	formatter.SetColorOutput(false)
	if got := formatter.Tint("⠋", tint); got != "⠋" {
		t.Errorf("Tint() without color = %q", got)
	}
	formatter.SetColorOutput(true)
	if got := formatter.Tint("⠋", tint); got != "\033[32m⠋\033[0m" {
		t.Errorf("Tint() with color = %q", got)
	}
	if !(Tint{}).IsZero() {
		t.Error("zero Tint should report IsZero")
	}
}
