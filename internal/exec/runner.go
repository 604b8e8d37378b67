// Package exec runs a child process while the spinner is on screen, streaming its
// output line by line so the latest line can be shown as the spinner message.
package exec

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/johnconnor-sec/xspin-go/internal/errors"
)

// waitDelay bounds how long output is still read after the run is cancelled.
const waitDelay = 500 * time.Millisecond

// Stream identifies which pipe a line came from.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// Line is one line of child output, without its terminator.
type Line struct {
	Stream Stream
	Text   string
}

// Options configures process execution.
type Options struct {
	// Timeout for process execution; zero means no limit
	Timeout time.Duration

	// Extra environment variables, added to the inherited environment
	Environment map[string]string

	// Working directory (if empty, uses current directory)
	WorkingDir string

	// Stdin for the child; nil means no input
	Stdin io.Reader
}

// Result holds the outcome of a run.
type Result struct {
	ExitCode int
	Duration time.Duration
	TimedOut bool
	// LastLine is the last non-blank line the child printed on either stream
	LastLine string
}

// Runner executes commands.
type Runner struct {
	defaults Options
}

// New creates a Runner with default options.
func New(defaults Options) *Runner {
	return &Runner{defaults: defaults}
}

// Run starts command and calls onLine for every line it prints, in the order
// lines are read. onLine is never called concurrently. A non-zero exit status is
// reported in Result.ExitCode, not as an error.
func (r *Runner) Run(ctx context.Context, command string, args []string, opts *Options, onLine func(Line)) (*Result, error) {
	options := r.merge(opts)
	startTime := time.Now()

	execCtx, cancel := ctx, context.CancelFunc(func() {})
	if options.Timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, options.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(execCtx, command, args...)
	cmd.Dir = options.WorkingDir
	cmd.Stdin = options.Stdin
	if len(options.Environment) > 0 {
		cmd.Env = os.Environ()
		for _, key := range slices.Sorted(maps.Keys(options.Environment)) {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, options.Environment[key]))
		}
	}

	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	stdout, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(err, errors.CommandFailed, "Failed to create stdout pipe")
	}
	defer stdout.Close()
	stderr, stderrW, err := os.Pipe()
	if err != nil {
		stdoutW.Close()
		return nil, errors.Wrap(err, errors.CommandFailed, "Failed to create stderr pipe")
	}
	defer stderr.Close()
	cmd.Stdout, cmd.Stderr = stdoutW, stderrW

	startErr := cmd.Start()
	// The child holds its own copies; ours must go so EOF arrives when it exits.
	stdoutW.Close()
	stderrW.Close()
	if startErr != nil {
		return nil, errors.CommandFailedError(command, startErr)
	}

	// A descendant that outlives the kill can keep the pipes open forever.
	stopReading := context.AfterFunc(execCtx, func() {
		time.AfterFunc(waitDelay, func() {
			stdout.Close()
			stderr.Close()
		})
	})
	defer stopReading()

	result := &Result{}
	var mu sync.Mutex
	emit := func(line Line) {
		mu.Lock()
		defer mu.Unlock()
		if strings.TrimSpace(line.Text) != "" {
			result.LastLine = line.Text
		}
		if onLine != nil {
			onLine(line)
		}
	}

	var g errgroup.Group
	g.Go(func() error { return streamReader(stdout, Stdout, emit) })
	g.Go(func() error { return streamReader(stderr, Stderr, emit) })
	readErr := g.Wait()

	err = cmd.Wait()
	result.Duration = time.Since(startTime)

	result, err = handleCommandResult(execCtx, err, result, options.Timeout)
	if err == nil && readErr != nil && !stderrors.Is(readErr, os.ErrClosed) {
		err = errors.Wrap(readErr, errors.CommandFailed, "Failed to read command output")
	}
	return result, err
}

func (r *Runner) merge(override *Options) Options {
	result := r.defaults
	if override == nil {
		return result
	}
	if override.Timeout != 0 {
		result.Timeout = override.Timeout
	}
	if override.Environment != nil {
		result.Environment = override.Environment
	}
	if override.WorkingDir != "" {
		result.WorkingDir = override.WorkingDir
	}
	if override.Stdin != nil {
		result.Stdin = override.Stdin
	}
	return result
}

// streamReader reads lines from a pipe until EOF.
func streamReader(reader io.Reader, stream Stream, emit func(Line)) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		emit(Line{Stream: stream, Text: strings.TrimRight(scanner.Text(), "\r")})
	}
	return scanner.Err()
}

// handleCommandResult maps the Wait error onto the result.
func handleCommandResult(ctx context.Context, err error, result *Result, timeout time.Duration) (*Result, error) {
	if ctx.Err() != nil {
		result.ExitCode = -1
		result.TimedOut = ctx.Err() == context.DeadlineExceeded
		if result.TimedOut {
			return result, errors.New(errors.CommandFailed, "Command execution timed out").
				WithDetails(fmt.Sprintf("Timeout: %v", timeout))
		}
		return result, errors.Wrap(ctx.Err(), errors.CommandFailed, "Command execution cancelled")
	}

	var exitError *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case stderrors.As(err, &exitError):
		result.ExitCode = exitError.ExitCode()
	default:
		return result, errors.Wrap(err, errors.CommandFailed, "Failed to execute command")
	}
	return result, nil
}

// NeedsShell reports whether a single command string uses shell syntax (pipes,
// redirection, substitution, globs or leading VAR=value assignments) and must be
// run through the shell.
func NeedsShell(command string) bool {
	shellFeatures := []string{
		"|", "&", ";",
		">", "<",
		"$(", "`",
		"*", "?", "[",
	}
	for _, feature := range shellFeatures {
		if strings.Contains(command, feature) {
			return true
		}
	}

	parts := strings.Fields(command)
	return len(parts) > 1 && strings.Contains(parts[0], "=") && !strings.HasPrefix(parts[0], "-") && !strings.HasPrefix(parts[0], "=")
}

// Shell returns the command and arguments that run script through the platform
// shell.
func Shell(script string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", script}
	}
	return "/bin/sh", []string{"-c", script}
}
