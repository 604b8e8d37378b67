package terminal

import (
	"io"
	"os"
	"sync"
)

// Hooks bracket a live display session. Before runs ahead of the first frame and
// After once the final frame is on screen.
type Hooks interface {
	Before() error
	After() error
}

// Session is the platform implementation of Hooks. On unix it disables echo on
// In and hides the cursor on Out; on Windows it enables escape processing and
// drives the taskbar progress indicator instead of touching echo.
type Session struct {
	In     *os.File
	Out    *os.File
	Cursor Cursor

	mu     sync.Mutex
	active bool
	saved  savedState
}

// NewSession returns hooks for the given input and output files.
func NewSession(in, out *os.File) *Session {
	return &Session{
		In:     in,
		Out:    out,
		Cursor: CursorFromEnv(),
	}
}

// Before prepares the terminal. Calling it twice without After is a no-op.
func (s *Session) Before() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return nil
	}
	s.active = true

	if err := s.prepare(); err != nil {
		return err
	}
	return s.Cursor.Hide(s.writer())
}

// After restores whatever Before changed.
func (s *Session) After() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil
	}
	s.active = false

	err := s.restore()
	if showErr := s.Cursor.Show(s.writer()); err == nil {
		err = showErr
	}
	return err
}

func (s *Session) writer() io.Writer {
	if s.Out == nil {
		return io.Discard
	}
	return s.Out
}

// NopHooks does nothing. It is used when the display is disabled.
type NopHooks struct{}

func (NopHooks) Before() error { return nil }
func (NopHooks) After() error  { return nil }
