package output

import (
	"io"
	"os"

	"github.com/johnconnor-sec/xspin-go/internal/terminal"
)

// isColorSupported decides whether w should receive styling escape sequences.
func isColorSupported(w io.Writer) bool {
	// Respect NO_COLOR standard
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Force color if requested
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	if term := os.Getenv("TERM"); term == "dumb" {
		return false
	}

	f, ok := w.(*os.File)
	return ok && terminal.Enabled(f)
}
