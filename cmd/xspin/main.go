// Xspin - live terminal spinners for long-running commands
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/johnconnor-sec/xspin-go/internal/config"
	"github.com/johnconnor-sec/xspin-go/internal/errors"
	"github.com/johnconnor-sec/xspin-go/internal/output"
	"github.com/johnconnor-sec/xspin-go/internal/sched"
	"github.com/johnconnor-sec/xspin-go/internal/spinner"
	"github.com/johnconnor-sec/xspin-go/internal/terminal"
)

// Build information - set by linker flags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// exitStatus carries a child's exit code out of 'xspin run' without printing
// anything further.
type exitStatus struct {
	code int
}

func (e *exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	if err := run(); err != nil {
		var status *exitStatus
		if stderrors.As(err, &status) {
			os.Exit(status.code)
		}
		handleError(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCommand(&app{}).ExecuteContext(ctx)
}

// app holds state shared by the subcommands: global flags and the resolved
// configuration.
type app struct {
	stream   string
	logLevel string
	noColor  bool

	cfg    *config.Config
	logger *output.Logger
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "xspin",
		Short:         "Show a live spinner while work runs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringVar(&a.stream, "stream", "", "Output stream for the display (auto, stdout, stderr)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newRunCommand(a),
		newDemoCommand(a),
		newMeasureCommand(),
		newConfigCommand(),
		newVersionCommand(),
	)
	return cmd
}

// load resolves the configuration, applies the global flags and installs the
// configured logger.
func (a *app) load() error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}

	if a.stream != "" {
		cfg.Spinner.Stream = a.stream
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.noColor {
		cfg.Spinner.Color = "none"
		// Success and failure marks follow the NO_COLOR convention.
		if err := os.Setenv("NO_COLOR", "1"); err != nil {
			return errors.Wrap(err, errors.InternalError, "Cannot disable color")
		}
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, errors.ValidationFailed, "Invalid command line flags")
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	output.SetGlobalLogger(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

// newRuntime builds the display runtime on the configured stream.
func (a *app) newRuntime() (*spinner.Runtime, error) {
	out, err := terminal.StreamByName(a.cfg.Spinner.Stream)
	if err != nil {
		return nil, err
	}
	return spinner.NewRuntime(out,
		spinner.WithHooks(terminal.NewSession(os.Stdin, out)),
		spinner.WithRuntimeLogger(a.logger),
	), nil
}

// spinnerOptions translates the spinner section of the configuration. A
// cooperative configuration shares el.
func (a *app) spinnerOptions(el *sched.EventLoop) spinner.Options {
	return spinner.Options{
		Delay:     a.cfg.Spinner.Delay,
		Frames:    a.cfg.Spinner.Frames,
		Tint:      a.cfg.Tint(),
		Truncate:  a.cfg.Spinner.Truncate,
		Scheduler: sched.New(a.cfg.Kind(), el),
		Logger:    a.logger,
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd)
		},
	}
}

func printVersion(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "xspin %s\n", version)
	fmt.Fprintf(out, "  Git commit: %s\n", commit)
	fmt.Fprintf(out, "  Build date: %s\n", date)
	fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "  Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// handleError prints err to w, followed by the hints of the outermost
// XspinError it wraps.
func handleError(w io.Writer, err error) {
	formatter := output.NewFormatter(w)
	formatter.Error("%v", err)

	var xerr *errors.XspinError
	if !stderrors.As(err, &xerr) {
		return
	}
	for _, suggestion := range xerr.Suggestions {
		formatter.Info("%s", suggestion)
	}
}
