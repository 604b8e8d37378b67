package spinner

import (
	"context"
	"io"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/johnconnor-sec/xspin-go/internal/output"
	"github.com/johnconnor-sec/xspin-go/internal/sched"
)

// DefaultFrames is the braille dot animation.
var DefaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// DefaultDelay is the pause between frames when none is configured.
const DefaultDelay = 80 * time.Millisecond

// Options configure a Spinner.
type Options struct {
	Delay     time.Duration
	Frames    []string
	Tint      output.Tint
	Truncate  bool
	Scheduler sched.Scheduler
	Logger    *output.Logger
}

// Spinner is the stock render hook: an animated glyph followed by the most recent
// message. Unlike the loop's pending slot the message persists until replaced.
type Spinner struct {
	rt        *Runtime
	loop      *Loop
	frames    []string
	tint      output.Tint
	truncate  bool
	formatter *output.Formatter
	width     *runewidth.Condition

	mu      sync.Mutex
	message string
	next    int
}

// New returns a stopped spinner on rt.
func New(rt *Runtime, opts Options) *Spinner {
	if rt == nil {
		rt = Default()
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if len(opts.Frames) == 0 {
		opts.Frames = DefaultFrames
	}

	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false

	s := &Spinner{
		rt:        rt,
		frames:    opts.Frames,
		tint:      opts.Tint,
		truncate:  opts.Truncate,
		formatter: output.NewFormatter(rt.Writer()),
		width:     cond,
	}

	var loopOpts []LoopOption
	if opts.Logger != nil {
		loopOpts = append(loopOpts, WithLogger(opts.Logger))
	}
	s.loop = NewLoop(rt, opts.Scheduler, opts.Delay, s.render, loopOpts...)
	return s
}

// Loop returns the render loop driving s.
func (s *Spinner) Loop() *Loop { return s.loop }

// Start begins the animation with an initial message. On a disabled runtime
// nothing is drawn.
func (s *Spinner) Start(ctx context.Context, message string) error {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()

	if !s.rt.Enabled() {
		return nil
	}
	return s.loop.Start(ctx)
}

// Update replaces the message shown from the next frame on.
func (s *Spinner) Update(message string) {
	s.loop.SetMessage(message)
}

// Succeed stops the spinner, leaving a success line.
func (s *Spinner) Succeed(ctx context.Context, message string) error {
	return s.Stop(ctx, s.formatter.SuccessText("%s", message))
}

// Fail stops the spinner, leaving a failure line.
func (s *Spinner) Fail(ctx context.Context, message string) error {
	return s.Stop(ctx, s.formatter.ErrorText("%s", message))
}

// Stop ends the animation. A non-empty epilogue is left on screen in place of
// the spinner; an empty one leaves nothing behind.
func (s *Spinner) Stop(ctx context.Context, epilogue string) error {
	// Updates not drawn yet must not prefix the epilogue.
	s.loop.take()

	if !s.loop.Running() {
		if !s.rt.Enabled() && epilogue != "" {
			_, err := io.WriteString(s.rt.Writer(), epilogue+"\n")
			return err
		}
		return nil
	}
	return s.loop.Stop(ctx, epilogue)
}

func (s *Spinner) render(message string, end bool) (iter.Seq[int], error) {
	if end {
		if message != "" && !strings.HasSuffix(message, "\n") {
			message += "\n"
		}
		return Draw(s.rt, message)
	}
	return Draw(s.rt, s.nextFrame(message))
}

// nextFrame advances the animation and returns the frame text. It never ends in
// a line break, so the cursor stays on the frame's last row.
func (s *Spinner) nextFrame(message string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message != "" {
		s.message = message
	}
	glyph := s.frames[s.next%len(s.frames)]
	s.next++

	text := s.message
	if s.truncate {
		avail := s.rt.Geometry().Columns() - s.width.StringWidth(glyph) - 2
		text = s.width.Truncate(text, max(avail, 0), "…")
	}

	glyph = s.formatter.Tint(glyph, s.tint)
	if text == "" {
		return glyph
	}
	return glyph + " " + text
}
