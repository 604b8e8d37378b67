package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnconnor-sec/xspin-go/internal/exec"
	"github.com/johnconnor-sec/xspin-go/internal/sched"
	"github.com/johnconnor-sec/xspin-go/internal/security"
	"github.com/johnconnor-sec/xspin-go/internal/spinner"
)

type runOptions struct {
	delay     time.Duration
	scheduler string
	timeout   time.Duration
	dir       string
	env       []string
}

func newRunCommand(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a command behind a spinner showing its latest output line",
		Long: strings.TrimSpace(`
Run a command while a spinner shows the last line it printed. When the command
finishes the spinner is replaced by a summary line and xspin exits with the
command's exit status.

A single argument containing shell syntax is run through the shell:
  xspin run -- 'make build | tee build.log'
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if cmd.Flags().Changed("delay") {
				a.cfg.Spinner.Delay = opts.delay
			}
			if cmd.Flags().Changed("scheduler") {
				a.cfg.Spinner.Scheduler = opts.scheduler
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return runCommand(cmd.Context(), a, args, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.delay, "delay", spinner.DefaultDelay, "Pause between frames")
	cmd.Flags().StringVar(&opts.scheduler, "scheduler", sched.Thread.String(), "Scheduling model (thread, cooperative)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Kill the command after this long (0 means no limit)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "C", "", "Working directory for the command")
	cmd.Flags().StringArrayVarP(&opts.env, "env", "e", nil, "Extra environment variable for the command (KEY=VALUE, repeatable)")
	return cmd
}

func runCommand(ctx context.Context, a *app, args []string, opts runOptions) error {
	env, err := security.ParseAssignments(opts.env)
	if err != nil {
		return err
	}
	rt, err := a.newRuntime()
	if err != nil {
		return err
	}

	command, cmdArgs := commandLine(args)
	label := strings.Join(args, " ")

	s := spinner.New(rt, a.spinnerOptions(sched.NewEventLoop()))

	// Teardown must still draw the summary after an interrupt.
	stopCtx := context.WithoutCancel(ctx)
	if err := rt.Begin(); err != nil {
		return err
	}
	defer func() {
		if err := rt.End(stopCtx); err != nil {
			a.logger.Warn("Terminal teardown failed", map[string]any{"error": err.Error()})
		}
	}()

	if err := s.Start(ctx, label); err != nil {
		return err
	}

	a.logger.Debug("Starting command", map[string]any{
		"command": command,
		"args":    len(cmdArgs),
		"env":     security.NewEnvSanitizer().SanitizeAll(env),
	})
	runner := exec.New(exec.Options{Timeout: opts.timeout, WorkingDir: opts.dir, Environment: env})
	result, runErr := runner.Run(ctx, command, cmdArgs, nil, func(line exec.Line) {
		if text := strings.TrimSpace(line.Text); text != "" {
			s.Update(text)
		}
	})

	switch {
	case result != nil && result.TimedOut:
		if err := s.Fail(stopCtx, fmt.Sprintf("timed out after %s", opts.timeout)); err != nil {
			return err
		}
		return &exitStatus{code: 124}
	case ctx.Err() != nil:
		if err := s.Fail(stopCtx, "interrupted"); err != nil {
			return err
		}
		return &exitStatus{code: 130}
	case runErr != nil:
		if err := s.Stop(stopCtx, ""); err != nil {
			a.logger.Debug("Stop failed", map[string]any{"error": err.Error()})
		}
		return runErr
	case result.ExitCode != 0:
		a.logger.Debug("Command failed", map[string]any{"exit": result.ExitCode, "last_line": result.LastLine})
		if err := s.Fail(stopCtx, fmt.Sprintf("exit %d", result.ExitCode)); err != nil {
			return err
		}
		return &exitStatus{code: result.ExitCode}
	}

	a.logger.LogDuration("command", result.Duration, map[string]any{"command": command})
	return s.Succeed(stopCtx, fmt.Sprintf("done (%s)", formatElapsed(result.Duration)))
}

// commandLine splits args into the program and its arguments. A lone argument
// with spaces or shell syntax is handed to the shell.
func commandLine(args []string) (string, []string) {
	if len(args) == 1 && (exec.NeedsShell(args[0]) || strings.ContainsAny(args[0], " \t")) {
		return exec.Shell(args[0])
	}
	return args[0], args[1:]
}

// formatElapsed rounds d to a tenth of a second, or to milliseconds below one
// second.
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
