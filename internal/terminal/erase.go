package terminal

import (
	"io"
	"strings"
)

const (
	seqColumn1   = "\x1b[1G"
	seqCursorUp  = "\x1b[1A"
	seqEraseLine = "\x1b[2K"
)

// EraseSequence returns the bytes that remove n rows ending at the cursor row and
// leave the cursor in column 1 of the topmost of them. At least one row is always
// erased.
func EraseSequence(n int) string {
	n = max(n, 1)

	var b strings.Builder
	b.Grow(len(seqColumn1) + n*(len(seqCursorUp)+len(seqEraseLine)+len(seqColumn1)))
	b.WriteString(seqColumn1)
	for i := range n {
		if i > 0 {
			b.WriteString(seqCursorUp)
		}
		b.WriteString(seqEraseLine)
		b.WriteString(seqColumn1)
	}
	return b.String()
}

// Erase writes EraseSequence(n) to w. n must be the row count of the frame that
// was written last; anything else corrupts the display.
func Erase(w io.Writer, n int) error {
	_, err := io.WriteString(w, EraseSequence(n))
	return err
}
