package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/johnconnor-sec/xspin-go/internal/errors"
	"github.com/johnconnor-sec/xspin-go/internal/sched"
	"github.com/johnconnor-sec/xspin-go/internal/spinner"
)

type demoOptions struct {
	workers int
	steps   int
	step    time.Duration
}

func newDemoCommand(a *app) *cobra.Command {
	opts := demoOptions{workers: 3, steps: 10, step: 150 * time.Millisecond}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Animate a spinner while concurrent workers post progress messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.workers < 1 {
				return errors.ValidationError("--workers", fmt.Sprint(opts.workers), "at least one worker is required")
			}
			if opts.steps < 1 {
				return errors.ValidationError("--steps", fmt.Sprint(opts.steps), "at least one step is required")
			}
			if err := a.load(); err != nil {
				return err
			}
			return runDemo(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of concurrent workers")
	cmd.Flags().IntVarP(&opts.steps, "steps", "n", opts.steps, "Steps per worker")
	cmd.Flags().DurationVar(&opts.step, "step", opts.step, "Base duration of one step")
	return cmd
}

func runDemo(ctx context.Context, a *app, opts demoOptions) error {
	rt, err := a.newRuntime()
	if err != nil {
		return err
	}

	el := sched.NewEventLoop()
	spinnerOpts := a.spinnerOptions(el)
	s := spinner.New(rt, spinnerOpts)

	stopCtx := context.WithoutCancel(ctx)
	if err := rt.Begin(); err != nil {
		return err
	}
	defer func() {
		if err := rt.End(stopCtx); err != nil {
			a.logger.Warn("Terminal teardown failed", map[string]any{"error": err.Error()})
		}
	}()

	if err := s.Start(ctx, fmt.Sprintf("starting %d workers", opts.workers)); err != nil {
		return err
	}

	start := time.Now()
	var updates atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := range opts.workers {
		g.Go(func() error {
			// Workers run at different speeds so their messages interleave.
			pause := opts.step + time.Duration(w)*opts.step/3
			for step := range opts.steps {
				if err := spinnerOpts.Scheduler.Sleep(gctx, pause); err != nil {
					return err
				}
				s.Update(fmt.Sprintf("worker %d: step %d/%d", w+1, step+1, opts.steps))
				updates.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if failErr := s.Fail(stopCtx, "interrupted"); failErr != nil {
			return failErr
		}
		return &exitStatus{code: 130}
	}

	return s.Succeed(stopCtx, fmt.Sprintf("%d workers posted %d updates (%s)",
		opts.workers, updates.Load(), formatElapsed(time.Since(start))))
}
