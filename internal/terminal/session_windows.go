//go:build windows

package terminal

import (
	"io"

	"golang.org/x/sys/windows"
)

const (
	// Windows Terminal taskbar progress: indeterminate and cleared.
	seqProgressBegin = "\x1b]9;4;3;0\a"
	seqProgressEnd   = "\x1b]9;4;0;0\a"
)

type savedState struct {
	mode    uint32
	hasMode bool
}

// prepare turns on virtual terminal processing so the escape sequences written by
// the spinner are interpreted, then starts the progress indicator.
func (s *Session) prepare() error {
	if s.Out == nil {
		return nil
	}
	h := windows.Handle(s.Out.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err == nil {
		if err := windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
			return err
		}
		s.saved.mode, s.saved.hasMode = mode, true
	}
	_, err := io.WriteString(s.Out, seqProgressBegin)
	return err
}

func (s *Session) restore() error {
	if s.Out == nil {
		return nil
	}
	_, err := io.WriteString(s.Out, seqProgressEnd)
	if s.saved.hasMode {
		s.saved.hasMode = false
		if modeErr := windows.SetConsoleMode(windows.Handle(s.Out.Fd()), s.saved.mode); err == nil {
			err = modeErr
		}
	}
	return err
}
