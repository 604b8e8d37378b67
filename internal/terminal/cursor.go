package terminal

import (
	"io"
	"os"

	"github.com/gdamore/tcell/v2/terminfo"
	_ "github.com/gdamore/tcell/v2/terminfo/base"
)

const (
	defaultHideCursor = "\x1b[?25l"
	defaultShowCursor = "\x1b[?25h"
)

// Cursor toggles cursor visibility using the terminfo capabilities of a
// terminal type, falling back to the DEC private mode sequences.
type Cursor struct {
	ti *terminfo.Terminfo
}

// NewCursor looks up the terminfo entry for name (usually $TERM). Unknown
// terminals get the fallback sequences.
func NewCursor(name string) Cursor {
	ti, err := terminfo.LookupTerminfo(name)
	if err != nil || ti.HideCursor == "" || ti.ShowCursor == "" {
		return Cursor{}
	}
	return Cursor{ti: ti}
}

// CursorFromEnv is NewCursor for the terminal named by $TERM.
func CursorFromEnv() Cursor {
	return NewCursor(os.Getenv("TERM"))
}

// HideSequence returns the bytes Hide writes.
func (c Cursor) HideSequence() string {
	if c.ti == nil {
		return defaultHideCursor
	}
	return c.ti.HideCursor
}

// ShowSequence returns the bytes Show writes.
func (c Cursor) ShowSequence() string {
	if c.ti == nil {
		return defaultShowCursor
	}
	return c.ti.ShowCursor
}

// Hide makes the cursor invisible.
func (c Cursor) Hide(w io.Writer) error {
	return c.put(w, c.HideSequence())
}

// Show makes the cursor visible again.
func (c Cursor) Show(w io.Writer) error {
	return c.put(w, c.ShowSequence())
}

func (c Cursor) put(w io.Writer, s string) error {
	if c.ti != nil {
		// TPuts expands terminfo padding such as $<5>.
		c.ti.TPuts(w, s)
		return nil
	}
	_, err := io.WriteString(w, s)
	return err
}
