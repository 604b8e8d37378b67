//go:build windows

package terminal

import (
	"os"

	"golang.org/x/sys/windows"
)

// columns reads the visible window rectangle of the console screen buffer.
func columns(f *os.File) int {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(windows.Handle(f.Fd()), &info); err != nil {
		return 0
	}
	return int(info.Window.Right) - int(info.Window.Left) + 1
}
