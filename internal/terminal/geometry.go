// Package terminal holds the platform-facing pieces of the live display: terminal
// geometry, the row eraser, cursor visibility and the session hooks that disable echo
// while a spinner is on screen.
package terminal

import "os"

// FallbackColumns is reported whenever the width cannot be queried.
const FallbackColumns = 80

// Columns returns the current column width of the terminal attached to f. It
// queries the terminal on every call so resizes between frames are picked up.
func Columns(f *os.File) int {
	if f == nil {
		return FallbackColumns
	}
	if cols := columns(f); cols > 0 {
		return cols
	}
	return FallbackColumns
}

// Geometry reports the column width of File. It satisfies frame.Geometry.
type Geometry struct {
	File *os.File
}

// Columns returns the current width of g.File.
func (g Geometry) Columns() int {
	return Columns(g.File)
}
