// Package spinner runs the live display: a render loop that draws a frame, waits,
// and erases exactly the rows it drew, plus the runtime that keeps at most one such
// loop active per output stream.
package spinner

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/johnconnor-sec/xspin-go/internal/errors"
	"github.com/johnconnor-sec/xspin-go/internal/frame"
	"github.com/johnconnor-sec/xspin-go/internal/output"
	"github.com/johnconnor-sec/xspin-go/internal/sched"
	"github.com/johnconnor-sec/xspin-go/internal/terminal"
)

// Runtime arbitrates access to one output stream. At most one Loop is active on a
// Runtime at a time; starting another stops the current one first.
type Runtime struct {
	out     io.Writer
	geom    frame.Geometry
	enabled bool
	hooks   terminal.Hooks
	logger  *output.Logger

	mu     sync.Mutex
	active *Loop
	handle sched.Handle
	// vacant is closed when the active loop releases the runtime.
	vacant chan struct{}
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithHooks sets the session hooks run by Begin and End.
func WithHooks(h terminal.Hooks) RuntimeOption {
	return func(rt *Runtime) { rt.hooks = h }
}

// WithEnabled overrides terminal detection.
func WithEnabled(enabled bool) RuntimeOption {
	return func(rt *Runtime) { rt.enabled = enabled }
}

// WithGeometry overrides the column width source used to measure frames.
func WithGeometry(g frame.Geometry) RuntimeOption {
	return func(rt *Runtime) { rt.geom = g }
}

// WithRuntimeLogger sets the logger for the runtime and the loops started on it.
func WithRuntimeLogger(l *output.Logger) RuntimeOption {
	return func(rt *Runtime) { rt.logger = l }
}

// NewRuntime returns an idle runtime writing to out. When out is an *os.File the
// enablement flag and geometry come from that file; otherwise the runtime is
// disabled and measures against the fallback width.
func NewRuntime(out io.Writer, opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		out:    out,
		geom:   frame.FixedWidth(terminal.FallbackColumns),
		hooks:  terminal.NopHooks{},
		logger: output.GetGlobalLogger(),
	}
	if f, ok := out.(*os.File); ok {
		rt.geom = terminal.Geometry{File: f}
		rt.enabled = terminal.Enabled(f)
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.logger = rt.logger.WithField("component", "runtime")
	return rt
}

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// Default returns the process-wide runtime. It is created on first use, writing
// to terminal.Stream() with a Session on stdin and that stream.
func Default() *Runtime {
	defaultOnce.Do(func() {
		out := terminal.Stream()
		defaultRuntime = NewRuntime(out, WithHooks(terminal.NewSession(os.Stdin, out)))
	})
	return defaultRuntime
}

// Writer returns the output stream frames are written to.
func (rt *Runtime) Writer() io.Writer { return rt.out }

// Geometry returns the column width source for frames on this runtime.
func (rt *Runtime) Geometry() frame.Geometry { return rt.geom }

// Enabled reports whether the output is an interactive terminal. Callers should
// skip the live display entirely when it is not.
func (rt *Runtime) Enabled() bool { return rt.enabled }

// Active returns the loop currently running on rt, or nil.
func (rt *Runtime) Active() *Loop {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.active
}

// Begin runs the setup hook ahead of the first frame of a session.
func (rt *Runtime) Begin() error {
	if !rt.enabled {
		return nil
	}
	if err := rt.hooks.Before(); err != nil {
		return errors.HookFailedError("setup", err)
	}
	rt.logger.Debug("Session started")
	return nil
}

// End stops the active loop and runs the teardown hook.
func (rt *Runtime) End(ctx context.Context) error {
	err := rt.Stop(ctx)
	if !rt.enabled {
		return err
	}
	if hookErr := rt.hooks.After(); hookErr != nil && err == nil {
		err = errors.HookFailedError("teardown", hookErr)
	}
	rt.logger.Debug("Session ended")
	return err
}

// Stop stops the active loop, if any, without an epilogue. A loop on an event
// loop is stopped from inside that event loop, entering it when ctx is not
// already there.
func (rt *Runtime) Stop(ctx context.Context) error {
	l := rt.Active()
	if l == nil {
		return nil
	}
	return rt.stopLoop(ctx, l, "")
}

func (rt *Runtime) stopLoop(ctx context.Context, l *Loop, epilogue string) error {
	switch l.Kind() {
	case sched.Cooperative:
		if el, ok := l.sched.(*sched.EventLoop); ok && !el.InLoop(ctx) {
			var err error
			el.Run(ctx, func(ctx context.Context) {
				err = l.stop(ctx, epilogue)
			})
			return err
		}
	}
	return l.stop(ctx, epilogue)
}

// activate stops the current loop and launches l once the runtime is vacant.
// No lock is held while a previous loop stops, so a stop that suspends on an
// event loop lets other tasks of that loop run. When another caller is already
// stopping the previous loop, activate waits on l's scheduler for the release.
// The first error is a failed final render of a replaced loop; a cancelled ctx
// while waiting leaves l idle.
func (rt *Runtime) activate(ctx context.Context, l *Loop) (launched bool, err error) {
	for {
		rt.mu.Lock()
		prev, vacant := rt.active, rt.vacant
		if prev == nil {
			rt.active = l
			rt.vacant = make(chan struct{})
			rt.handle = l.launch(ctx)
			rt.mu.Unlock()
			return true, err
		}
		rt.mu.Unlock()

		rt.logger.Debug("Stopping previous loop", map[string]any{"scheduler": prev.Kind()})
		if stopErr := rt.stopLoop(ctx, prev, ""); stopErr != nil && err == nil {
			err = stopErr
		}
		if waitErr := l.sched.Await(ctx, vacant); waitErr != nil {
			return false, waitErr
		}
	}
}

func (rt *Runtime) release(l *Loop) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.active == l {
		rt.active = nil
		rt.handle = nil
		close(rt.vacant)
		rt.vacant = nil
	}
}
