package spinner

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/johnconnor-sec/xspin-go/internal/errors"
	"github.com/johnconnor-sec/xspin-go/internal/sched"
	"github.com/johnconnor-sec/xspin-go/internal/terminal"
)

const testDelay = 2 * time.Millisecond

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (e *eventLog) add(event string) {
	e.mu.Lock()
	e.events = append(e.events, event)
	e.mu.Unlock()
}

func (e *eventLog) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

type renderCall struct {
	message string
	end     bool
}

// recorder is a render hook that writes "<name><n>" per tick and the final
// message verbatim, signalling every tick on ticked.
type recorder struct {
	rt     *Runtime
	name   string
	log    *eventLog
	ticked chan struct{}
	fail   func(n int) error

	mu    sync.Mutex
	calls []renderCall
}

func newRecorder(rt *Runtime, name string) *recorder {
	return &recorder{rt: rt, name: name, ticked: make(chan struct{}, 1024)}
}

func (r *recorder) render(message string, end bool) (iter.Seq[int], error) {
	r.mu.Lock()
	n := len(r.calls)
	r.calls = append(r.calls, renderCall{message, end})
	r.mu.Unlock()

	if r.log != nil {
		if end {
			r.log.add(r.name + ":final")
		} else {
			r.log.add(r.name + ":tick")
		}
	}

	if end {
		return Draw(r.rt, message)
	}
	if r.fail != nil {
		if err := r.fail(n); err != nil {
			return nil, err
		}
	}
	rows, err := Draw(r.rt, fmt.Sprintf("%s%d", r.name, n))
	select {
	case r.ticked <- struct{}{}:
	default:
	}
	return rows, err
}

func (r *recorder) snapshot() []renderCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]renderCall(nil), r.calls...)
}

func (r *recorder) ticks() int {
	n := 0
	for _, c := range r.snapshot() {
		if !c.end {
			n++
		}
	}
	return n
}

func (r *recorder) finals() []renderCall {
	var out []renderCall
	for _, c := range r.snapshot() {
		if c.end {
			out = append(out, c)
		}
	}
	return out
}

func waitTicks(t *testing.T, r *recorder, n int) {
	t.Helper()
	for i := range n {
		select {
		case <-r.ticked:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s: timed out waiting for tick %d", r.name, i+1)
		}
	}
}

func waitDone(t *testing.T, l *Loop) {
	t.Helper()
	l.mu.Lock()
	h := l.handle
	l.mu.Unlock()
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the loop body to exit")
	}
}

func newTestRuntime() (*Runtime, *lockedBuffer) {
	buf := &lockedBuffer{}
	return NewRuntime(buf, WithEnabled(true)), buf
}

var schedulers = []struct {
	name string
	make func() sched.Scheduler
}{
	{"thread", func() sched.Scheduler { return sched.Threads{} }},
	{"cooperative", func() sched.Scheduler { return sched.NewEventLoop() }},
}

func TestLoop_OutputIsRenderEraseAlternation(t *testing.T) {
	for _, s := range schedulers {
		t.Run(s.name, func(t *testing.T) {
			ctx := context.Background()
			rt, buf := newTestRuntime()
			rec := newRecorder(rt, "f")
			loop := NewLoop(rt, s.make(), testDelay, rec.render)

			if err := loop.Start(ctx); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			waitTicks(t, rec, 3)
			if err := loop.Stop(ctx, "done"); err != nil {
				t.Fatalf("Stop() error = %v", err)
			}

			ticks := rec.ticks()
			var want strings.Builder
			for i := range ticks {
				fmt.Fprintf(&want, "f%d", i)
				want.WriteString(terminal.EraseSequence(1))
			}
			want.WriteString("done\n")

			if got := buf.String(); got != want.String() {
				t.Errorf("output = %q\nwant    %q", got, want.String())
			}
			if got := strings.Count(buf.String(), "\x1b[2K"); got != ticks {
				t.Errorf("erase count = %d, want %d ticks", got, ticks)
			}
		})
	}
}

func TestLoop_StopTwiceRendersFinalOnce(t *testing.T) {
	for _, s := range schedulers {
		t.Run(s.name, func(t *testing.T) {
			ctx := context.Background()
			rt, buf := newTestRuntime()
			rec := newRecorder(rt, "f")
			loop := NewLoop(rt, s.make(), testDelay, rec.render)

			if err := loop.Start(ctx); err != nil {
				t.Fatal(err)
			}
			waitTicks(t, rec, 1)

			if err := loop.Stop(ctx, "done"); err != nil {
				t.Fatal(err)
			}
			after := buf.String()
			if err := loop.Stop(ctx, "again"); err != nil {
				t.Fatal(err)
			}

			if finals := rec.finals(); len(finals) != 1 {
				t.Fatalf("final renders = %d, want 1", len(finals))
			}
			if buf.String() != after {
				t.Errorf("second Stop wrote %q", strings.TrimPrefix(buf.String(), after))
			}
			if loop.Running() {
				t.Error("loop still running after Stop")
			}
		})
	}
}

func TestLoop_StopWithoutStartIsNoop(t *testing.T) {
	rt, buf := newTestRuntime()
	rec := newRecorder(rt, "f")
	loop := NewLoop(rt, nil, testDelay, rec.render)

	if err := loop.Stop(context.Background(), "done"); err != nil {
		t.Fatal(err)
	}
	if len(rec.snapshot()) != 0 || buf.String() != "" {
		t.Errorf("Stop on an idle loop rendered: calls=%v output=%q", rec.snapshot(), buf.String())
	}
}

func TestLoop_EpilogueFinalFrame(t *testing.T) {
	ctx := context.Background()
	rt, buf := newTestRuntime()
	rec := newRecorder(rt, "Loading")
	loop := NewLoop(rt, sched.Threads{}, testDelay, rec.render)

	if err := loop.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitTicks(t, rec, 1)
	if err := loop.Stop(ctx, "done"); err != nil {
		t.Fatal(err)
	}

	finals := rec.finals()
	if len(finals) != 1 || finals[0] != (renderCall{"done\n", true}) {
		t.Fatalf("final render = %+v, want message %q with end=true", finals, "done\n")
	}
	if !strings.HasSuffix(buf.String(), terminal.EraseSequence(1)+"done\n") {
		t.Errorf("final frame should follow the last erase and stay on screen: %q", buf.String())
	}
}

func TestLoop_PendingMessage(t *testing.T) {
	ctx := context.Background()
	rt, _ := newTestRuntime()
	rec := newRecorder(rt, "f")
	loop := NewLoop(rt, sched.Threads{}, testDelay, rec.render)

	loop.SetMessage("first")
	loop.SetMessage("second")
	if got := loop.Message(); got != "second" {
		t.Fatalf("Message() = %q, want last writer to win", got)
	}

	if err := loop.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitTicks(t, rec, 2)
	loop.SetMessage("note")
	// Stop can win the race against the next tick, in which case the note
	// becomes the prefix of the final message.
	if err := loop.Stop(ctx, "done"); err != nil {
		t.Fatal(err)
	}

	calls := rec.snapshot()
	if calls[0].message != "second" {
		t.Errorf("first tick message = %q, want %q", calls[0].message, "second")
	}
	if calls[1].message != "" {
		t.Errorf("second tick message = %q, want the slot to be cleared", calls[1].message)
	}

	seen := 0
	for _, c := range calls {
		if strings.Contains(c.message, "note") {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("message %q delivered %d times, want once: %+v", "note", seen, calls)
	}
	last := calls[len(calls)-1]
	if !last.end || !strings.HasSuffix(last.message, "done\n") {
		t.Errorf("last call = %+v", last)
	}
}

func TestLoop_RenderErrorEndsLoopAndErases(t *testing.T) {
	for _, s := range schedulers {
		t.Run(s.name, func(t *testing.T) {
			ctx := context.Background()
			rt, buf := newTestRuntime()
			rec := newRecorder(rt, "f")
			rec.fail = func(n int) error {
				if n == 1 {
					_, _ = rt.Writer().Write([]byte("partial"))
					return fmt.Errorf("glyph table missing")
				}
				return nil
			}
			loop := NewLoop(rt, s.make(), testDelay, rec.render)

			if err := loop.Start(ctx); err != nil {
				t.Fatal(err)
			}
			waitDone(t, loop)

			want := "f0" + terminal.EraseSequence(1) + "partial" + terminal.EraseSequence(1)
			if got := buf.String(); got != want {
				t.Errorf("output = %q, want %q", got, want)
			}

			// The failure is not surfaced, and the loop can still be stopped.
			if err := loop.Stop(ctx, "stopped"); err != nil {
				t.Fatalf("Stop() error = %v", err)
			}
			if !strings.HasSuffix(buf.String(), "stopped\n") {
				t.Errorf("final frame missing: %q", buf.String())
			}
			if rec.ticks() != 2 {
				t.Errorf("ticks = %d, want 2", rec.ticks())
			}
		})
	}
}

func TestLoop_RenderPanicIsContained(t *testing.T) {
	ctx := context.Background()
	rt, buf := newTestRuntime()
	rec := newRecorder(rt, "f")
	rec.fail = func(n int) error {
		if n == 0 {
			panic("index out of range")
		}
		return nil
	}
	loop := NewLoop(rt, sched.Threads{}, testDelay, rec.render)

	if err := loop.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitDone(t, loop)

	// Nothing was measured, so the one-row minimum erase is emitted.
	if got, want := buf.String(), terminal.EraseSequence(0); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if err := loop.Stop(ctx, ""); err != nil {
		t.Fatal(err)
	}
}

func TestLoop_FinalRenderFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	rt, _ := newTestRuntime()
	calls := 0
	loop := NewLoop(rt, sched.Threads{}, time.Hour, func(message string, end bool) (iter.Seq[int], error) {
		calls++
		if end {
			return nil, fmt.Errorf("write: broken pipe")
		}
		return nil, nil
	})

	// The first tick sleeps for an hour; cancel it to keep the test fast.
	loopCtx, cancel := context.WithCancel(ctx)
	if err := loop.Start(loopCtx); err != nil {
		t.Fatal(err)
	}
	cancel()
	waitDone(t, loop)

	err := loop.Stop(ctx, "done")
	if !errors.IsType(err, errors.RenderFailed) {
		t.Fatalf("Stop() error = %v, want a render_failed error", err)
	}
	if rt.Active() != nil {
		t.Error("runtime still holds the loop after a failed final render")
	}
}

func TestLoop_CancelledContextErasesOutstandingFrame(t *testing.T) {
	rt, buf := newTestRuntime()
	rec := newRecorder(rt, "f")
	loop := NewLoop(rt, sched.Threads{}, time.Hour, rec.render)

	ctx, cancel := context.WithCancel(context.Background())
	if err := loop.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitTicks(t, rec, 1)
	cancel()
	waitDone(t, loop)

	if got, want := buf.String(), "f0"+terminal.EraseSequence(1); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if err := loop.Stop(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
}

func TestLoop_StartTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	rt, _ := newTestRuntime()
	rec := newRecorder(rt, "f")
	loop := NewLoop(rt, sched.Threads{}, testDelay, rec.render)

	if err := loop.Start(ctx); err != nil {
		t.Fatal(err)
	}
	loop.mu.Lock()
	first := loop.handle
	loop.mu.Unlock()

	if err := loop.Start(ctx); err != nil {
		t.Fatal(err)
	}
	loop.mu.Lock()
	second := loop.handle
	loop.mu.Unlock()

	if first != second {
		t.Error("second Start spawned another tick loop")
	}
	if err := loop.Stop(ctx, ""); err != nil {
		t.Fatal(err)
	}
}

func TestLoop_RestartAfterStop(t *testing.T) {
	ctx := context.Background()
	rt, _ := newTestRuntime()
	rec := newRecorder(rt, "f")
	loop := NewLoop(rt, sched.Threads{}, testDelay, rec.render)

	for range 2 {
		if err := loop.Start(ctx); err != nil {
			t.Fatal(err)
		}
		waitTicks(t, rec, 1)
		if err := loop.Stop(ctx, "ok"); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(rec.finals()); got != 2 {
		t.Errorf("final renders = %d, want 2", got)
	}
}
