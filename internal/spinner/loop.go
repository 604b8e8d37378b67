package spinner

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/johnconnor-sec/xspin-go/internal/errors"
	"github.com/johnconnor-sec/xspin-go/internal/frame"
	"github.com/johnconnor-sec/xspin-go/internal/output"
	"github.com/johnconnor-sec/xspin-go/internal/sched"
	"github.com/johnconnor-sec/xspin-go/internal/terminal"
)

// RenderFunc draws one frame to the runtime's writer and returns the row counts of
// exactly what it wrote, usually via Draw. message is "" when no message is
// pending. end is true only for the final frame, which is never erased.
type RenderFunc func(message string, end bool) (iter.Seq[int], error)

type loopState int32

const (
	stateIdle loopState = iota
	stateStarting
	stateRunning
	stateStopping
)

// Loop repeatedly renders a frame, sleeps for its delay, and erases the rows the
// frame took. It runs under a sched.Scheduler, so the same loop works on its own
// goroutine or as a task on an EventLoop.
type Loop struct {
	rt     *Runtime
	sched  sched.Scheduler
	delay  time.Duration
	render RenderFunc
	logger *output.Logger

	pending atomic.Pointer[string]
	state   atomic.Int32

	mu     sync.Mutex
	handle sched.Handle
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLogger sets the loop's logger.
func WithLogger(l *output.Logger) LoopOption {
	return func(loop *Loop) { loop.logger = l }
}

// NewLoop returns an idle loop. A nil rt means Default(); a nil s means a
// dedicated goroutine.
func NewLoop(rt *Runtime, s sched.Scheduler, delay time.Duration, render RenderFunc, opts ...LoopOption) *Loop {
	if rt == nil {
		rt = Default()
	}
	if s == nil {
		s = sched.Threads{}
	}
	l := &Loop{
		rt:     rt,
		sched:  s,
		delay:  delay,
		render: render,
		logger: rt.logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.WithField("scheduler", s.Kind())
	return l
}

// Kind returns the scheduling model the loop runs under.
func (l *Loop) Kind() sched.Kind { return l.sched.Kind() }

// Running reports whether the loop is ticking.
func (l *Loop) Running() bool { return loopState(l.state.Load()) == stateRunning }

// SetMessage replaces the pending message. Only the latest message set before a
// tick is rendered.
func (l *Loop) SetMessage(text string) {
	l.pending.Store(&text)
}

// Message returns the pending message without consuming it.
func (l *Loop) Message() string {
	if p := l.pending.Load(); p != nil {
		return *p
	}
	return ""
}

func (l *Loop) take() string {
	if p := l.pending.Swap(nil); p != nil {
		return *p
	}
	return ""
}

// Start registers the loop with its runtime, stopping whichever loop was active,
// and begins ticking. Starting a loop that is not idle does nothing. The error
// reports a failed final render of the loop that was replaced; l starts anyway.
// If ctx ends while another caller is still stopping the active loop, l stays
// idle and ctx.Err() is returned.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	if loopState(l.state.Load()) != stateIdle {
		l.mu.Unlock()
		return nil
	}
	l.state.Store(int32(stateStarting))
	l.mu.Unlock()

	launched, err := l.rt.activate(ctx, l)
	if !launched {
		l.state.Store(int32(stateIdle))
		return err
	}

	l.logger.Debug("Loop started", map[string]any{"delay": l.delay.String()})
	return err
}

// launch marks l running and spawns its tick body. The runtime calls it while
// registering l, so a registered loop is never left in the starting state.
func (l *Loop) launch(ctx context.Context) sched.Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Store(int32(stateRunning))
	l.handle = l.sched.Spawn(ctx, l.run)
	return l.handle
}

// Stop ends the loop: it waits for the current tick to finish, renders the final
// frame with the pending message and epilogue, and releases the runtime. The
// final frame stays on screen. Stopping a loop that is not running does nothing.
func (l *Loop) Stop(ctx context.Context, epilogue string) error {
	return l.rt.stopLoop(ctx, l, epilogue)
}

func (l *Loop) stop(ctx context.Context, epilogue string) error {
	l.mu.Lock()
	if !l.state.CompareAndSwap(int32(stateRunning), int32(stateStopping)) {
		l.mu.Unlock()
		return nil
	}
	handle := l.handle
	l.mu.Unlock()

	handle.Wait(ctx)

	message := l.take()
	if epilogue != "" {
		message = message + epilogue + "\n"
	}
	err := l.finish(message)

	l.mu.Lock()
	l.handle = nil
	l.state.Store(int32(stateIdle))
	l.mu.Unlock()
	l.rt.release(l)

	l.logger.Debug("Loop stopped")
	return err
}

func (l *Loop) finish(message string) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.RenderFailedError(errors.RecoveredError(v), true)
		}
	}()

	if _, err := l.render(message, true); err != nil {
		return errors.RenderFailedError(err, true)
	}
	return nil
}

func (l *Loop) run(ctx context.Context) {
	for l.Running() {
		if err := l.tick(ctx); err != nil {
			if ctx.Err() != nil {
				l.logger.Debug("Loop cancelled")
			} else {
				l.logger.WithError(err).Debug("Loop ended after render failure")
			}
			return
		}
	}
}

// tick draws one frame, sleeps, and erases it. On any failure the rows still on
// screen are erased before returning; when nothing was measured the one-row
// minimum erase clears whatever a failed render left on the cursor row.
func (l *Loop) tick(ctx context.Context) (err error) {
	var rows iter.Seq[int]
	outstanding := false
	defer func() {
		if v := recover(); v != nil {
			err = errors.RecoveredError(v)
		}
		if err != nil && outstanding {
			_ = terminal.Erase(l.rt.out, safeSum(rows))
		}
	}()

	outstanding = true
	rows, err = l.render(l.take(), false)
	if err != nil {
		return errors.RenderFailedError(err, false)
	}

	if err = l.sched.Sleep(ctx, l.delay); err != nil {
		return err
	}

	n := frame.Sum(rows)
	outstanding = false
	if err = terminal.Erase(l.rt.out, n); err != nil {
		return errors.Wrap(err, errors.RenderFailed, "Erase failed")
	}
	return nil
}

// safeSum sums rows, treating a panicking sequence as empty.
func safeSum(rows iter.Seq[int]) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return frame.Sum(rows)
}
