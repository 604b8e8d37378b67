// Package frame measures rendered frames: display width of text and the number of
// terminal rows a frame wraps to.
package frame

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// RuneWidth returns the column contribution of r.
//
//	-1  control or format character (Cc, Cf)
//	 0  combining mark (non-zero canonical combining class)
//	 2  East-Asian Wide or Fullwidth
//	 1  everything else
//
// Callers summing widths must treat -1 as 0 net columns; LineWidth does.
func RuneWidth(r rune) int {
	if unicode.In(r, unicode.Cc, unicode.Cf) {
		return -1
	}
	if norm.NFD.PropertiesString(string(r)).CCC() != 0 {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// LineWidth returns the display width of a single logical line. Pure ASCII lines
// are measured by byte count without any Unicode lookup.
func LineWidth(line string) int {
	if isASCII(line) {
		return len(line)
	}

	total := 0
	for _, r := range line {
		if w := RuneWidth(r); w > 0 {
			total += w
		}
	}
	return total
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
