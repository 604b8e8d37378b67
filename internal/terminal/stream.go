package terminal

import (
	"os"

	"golang.org/x/term"

	"github.com/johnconnor-sec/xspin-go/internal/errors"
)

// Stream picks the output the live display writes to: stdout when it is a
// terminal, otherwise stderr, so that piped stdout stays clean.
func Stream() *os.File {
	if Enabled(os.Stdout) {
		return os.Stdout
	}
	return os.Stderr
}

// StreamByName resolves a configured stream name: "auto", "stdout" or "stderr".
func StreamByName(name string) (*os.File, error) {
	switch name {
	case "", "auto":
		return Stream(), nil
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, errors.TerminalUnavailableError(name)
	}
}

// Enabled reports whether f is an interactive terminal. Callers should skip the
// live display entirely when it is not.
func Enabled(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
