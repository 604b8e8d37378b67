//go:build unix

package terminal

import (
	"os"

	"golang.org/x/sys/unix"
)

// columns asks the tty driver for the window size of f.
func columns(f *os.File) int {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0
	}
	return int(ws.Col)
}
