//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import (
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type savedState struct {
	termios *unix.Termios
}

// prepare clears ECHO so keystrokes typed while the spinner runs do not tear the
// frame. Non-terminal input is left alone.
func (s *Session) prepare() error {
	if s.In == nil || !term.IsTerminal(int(s.In.Fd())) {
		return nil
	}
	fd := int(s.In.Fd())

	old, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return err
	}
	raw := *old
	raw.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(fd, ioctlSetTermiosDrain, &raw); err != nil {
		return err
	}
	s.saved.termios = old
	return nil
}

func (s *Session) restore() error {
	if s.saved.termios == nil {
		return nil
	}
	old := s.saved.termios
	s.saved.termios = nil
	return unix.IoctlSetTermios(int(s.In.Fd()), ioctlSetTermiosDrain, old)
}
