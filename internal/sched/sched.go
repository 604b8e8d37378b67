// Package sched provides the scheduling models a render loop runs under: a
// dedicated goroutine per loop (Threads) or a task on a shared cooperative event
// loop (EventLoop). The loop body is written once against Scheduler.
package sched

import (
	"context"
	"time"
)

// Kind identifies a scheduling model.
type Kind int

const (
	Thread Kind = iota
	Cooperative
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case Thread:
		return "thread"
	case Cooperative:
		return "cooperative"
	default:
		return "unknown"
	}
}

// ParseKind maps a configuration name to a Kind.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "thread", "":
		return Thread, true
	case "cooperative":
		return Cooperative, true
	default:
		return Thread, false
	}
}

// Handle refers to a spawned body.
type Handle interface {
	// Wait blocks until the body has returned. There is no timeout.
	Wait(ctx context.Context)
	// Done is closed once the body has returned.
	Done() <-chan struct{}
}

// Scheduler is the capability a render loop needs: start a body, suspend it for
// a delay, and join it.
type Scheduler interface {
	Kind() Kind
	Spawn(ctx context.Context, body func(ctx context.Context)) Handle
	// Sleep suspends the caller for d. It returns ctx.Err() if ctx ends first.
	Sleep(ctx context.Context, d time.Duration) error
	// Await suspends the caller until done is closed. It returns ctx.Err() if
	// ctx ends first.
	Await(ctx context.Context, done <-chan struct{}) error
}

// New returns the scheduler for kind. Cooperative schedulers share loop, which
// must not be nil for that kind.
func New(kind Kind, loop *EventLoop) Scheduler {
	if kind == Cooperative {
		return loop
	}
	return Threads{}
}

func await(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	default:
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
