package sched

import (
	"context"
	"time"
)

// Threads runs every body on its own goroutine. Sleep blocks that goroutine.
type Threads struct{}

// Kind returns Thread.
func (Threads) Kind() Kind { return Thread }

// Spawn starts body on a new goroutine.
func (Threads) Spawn(ctx context.Context, body func(ctx context.Context)) Handle {
	h := &threadHandle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		body(ctx)
	}()
	return h
}

// Sleep blocks for d.
func (Threads) Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// Await blocks until done is closed.
func (Threads) Await(ctx context.Context, done <-chan struct{}) error {
	return await(ctx, done)
}

type threadHandle struct {
	done chan struct{}
}

func (h *threadHandle) Wait(context.Context) { <-h.done }

func (h *threadHandle) Done() <-chan struct{} { return h.done }
