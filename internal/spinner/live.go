package spinner

import (
	"context"
	"io"
	"iter"

	"github.com/johnconnor-sec/xspin-go/internal/frame"
)

// Draw writes text to rt and returns its row counts. The counts are measured
// lazily, against the terminal width at the time they are summed.
func Draw(rt *Runtime, text string) (iter.Seq[int], error) {
	if _, err := io.WriteString(rt.Writer(), text); err != nil {
		return nil, err
	}
	return frame.Lines(text, rt.Geometry()), nil
}

// Live writes each frame to rt as it is pulled and yields the frame's row counts.
// Iteration stops after the first write error, which is yielded with nil counts.
func Live(rt *Runtime, frames iter.Seq[string]) iter.Seq2[iter.Seq[int], error] {
	return func(yield func(iter.Seq[int], error) bool) {
		for text := range frames {
			rows, err := Draw(rt, text)
			if !yield(rows, err) || err != nil {
				return
			}
		}
	}
}

// With starts l, runs fn, and stops l with the epilogue fn returns. l is stopped
// even when fn fails; when fn panics l is stopped without an epilogue and the panic
// continues.
func With(ctx context.Context, l *Loop, fn func(ctx context.Context, l *Loop) (string, error)) error {
	if err := l.Start(ctx); err != nil {
		l.logger.WithError(err).Warn("Previous loop did not stop cleanly")
	}

	defer func() {
		if v := recover(); v != nil {
			_ = l.Stop(ctx, "")
			panic(v)
		}
	}()

	epilogue, err := fn(ctx, l)
	if stopErr := l.Stop(ctx, epilogue); err == nil {
		err = stopErr
	}
	return err
}
