package sched

import (
	"context"
	"time"
)

type loopKey struct{}

// EventLoop is a cooperative scheduler: any number of tasks may be spawned on it
// but only the holder of its single token executes. A task gives the token up
// only at suspension points (Sleep, or Wait on another task), so code between
// two suspension points never interleaves with other tasks of the same loop.
//
// Contexts handed to tasks and Run callbacks are marked so InLoop can tell
// whether a caller is already executing on the loop.
type EventLoop struct {
	token chan struct{}
}

// NewEventLoop returns an idle loop.
func NewEventLoop() *EventLoop {
	return &EventLoop{token: make(chan struct{}, 1)}
}

// Kind returns Cooperative.
func (l *EventLoop) Kind() Kind { return Cooperative }

// InLoop reports whether ctx belongs to a task or callback running on l.
func (l *EventLoop) InLoop(ctx context.Context) bool {
	owner, _ := ctx.Value(loopKey{}).(*EventLoop)
	return owner == l
}

// Run executes fn on the loop and blocks until it returns. When ctx is already
// inside the loop fn runs directly.
func (l *EventLoop) Run(ctx context.Context, fn func(ctx context.Context)) {
	if l.InLoop(ctx) {
		fn(ctx)
		return
	}
	l.acquire()
	defer l.release()
	fn(l.mark(ctx))
}

// Spawn schedules body as a task. It starts once the token is free, so a caller
// inside the loop keeps running until its next suspension point.
func (l *EventLoop) Spawn(ctx context.Context, body func(ctx context.Context)) Handle {
	h := &taskHandle{loop: l, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		l.acquire()
		defer l.release()
		body(l.mark(ctx))
	}()
	return h
}

// Sleep yields the loop for d. Called from outside the loop it is a plain wait.
func (l *EventLoop) Sleep(ctx context.Context, d time.Duration) error {
	if !l.InLoop(ctx) {
		return sleep(ctx, d)
	}
	l.release()
	defer l.acquire()
	return sleep(ctx, d)
}

// Await yields the loop until done is closed. Called from outside the loop it
// is a plain wait.
func (l *EventLoop) Await(ctx context.Context, done <-chan struct{}) error {
	if !l.InLoop(ctx) {
		return await(ctx, done)
	}
	l.release()
	defer l.acquire()
	return await(ctx, done)
}

func (l *EventLoop) mark(ctx context.Context) context.Context {
	return context.WithValue(ctx, loopKey{}, l)
}

func (l *EventLoop) acquire() { l.token <- struct{}{} }

func (l *EventLoop) release() { <-l.token }

type taskHandle struct {
	loop *EventLoop
	done chan struct{}
}

// Wait blocks until the task finishes. From inside the loop the token is yielded
// while waiting so the awaited task can make progress.
func (h *taskHandle) Wait(ctx context.Context) {
	_ = h.loop.Await(context.WithoutCancel(ctx), h.done)
}

func (h *taskHandle) Done() <-chan struct{} { return h.done }
