package frame

import (
	"iter"
	"regexp"
	"sync/atomic"
	"unicode/utf8"
)

// sgrPattern matches an escape character followed by anything up to and
// including the first 'm'.
var sgrPattern = regexp.MustCompile("\x1b[^m]*?m")

// Geometry reports the current terminal column width.
type Geometry interface {
	Columns() int
}

// FixedWidth is a Geometry that always reports the same width.
type FixedWidth int

// Columns returns w.
func (w FixedWidth) Columns() int { return int(w) }

// StripSGR removes styling escape sequences from s.
func StripSGR(s string) string {
	return sgrPattern.ReplaceAllString(s, "")
}

// Lines returns the number of rows each logical line of text wraps to. The
// sequence is lazy: geom is queried when iteration starts, not when Lines is
// called. It is also single-use; ranging over it a second time yields nothing.
func Lines(text string, geom Geometry) iter.Seq[int] {
	var used atomic.Bool
	return func(yield func(int) bool) {
		if used.Swap(true) {
			return
		}
		cols := geom.Columns()
		if cols < 1 {
			cols = 1
		}
		for _, line := range splitLines(StripSGR(text)) {
			if !yield(rowsFor(LineWidth(line), cols)) {
				return
			}
		}
	}
}

// Rows is Lines with a fixed column count.
func Rows(text string, columns int) iter.Seq[int] {
	return Lines(text, FixedWidth(columns))
}

// Sum totals a row sequence. A nil sequence sums to 0.
func Sum(seq iter.Seq[int]) int {
	if seq == nil {
		return 0
	}
	total := 0
	for n := range seq {
		total += n
	}
	return total
}

func rowsFor(width, cols int) int {
	if width <= 0 {
		return 1
	}
	return (width + cols - 1) / cols
}

// splitLines breaks s on line terminators: \n, \r, \r\n, \v, \f, \x1c-\x1e,
// U+0085, U+2028 and U+2029. A trailing terminator does not start an extra
// line, and an empty string has no lines.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		next := i + size
		switch r {
		case '\r':
			if next < len(s) && s[next] == '\n' {
				next++
			}
			fallthrough
		case '\n', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
			lines = append(lines, s[start:i])
			start = next
		}
		i = next
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
