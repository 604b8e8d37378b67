// Package errors classifies the failures xspin reports: configuration problems,
// render and terminal hook failures, and child commands that could not run.
package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// ErrorType is the category an error is reported under.
type ErrorType string

const (
	ConfigNotFound ErrorType = "config_not_found"
	ConfigInvalid  ErrorType = "config_invalid"

	TerminalUnavailable ErrorType = "terminal_unavailable"
	HookFailed          ErrorType = "hook_failed"

	RenderFailed ErrorType = "render_failed"

	CommandFailed ErrorType = "command_failed"

	ValidationFailed ErrorType = "validation_failed"

	// InternalError is reported for errors that carry no category.
	InternalError ErrorType = "internal_error"
)

// XspinError is a categorized error. Error() yields a single line; Suggestions
// are kept apart so the CLI can print them as hints under the message.
type XspinError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Details     string    `json:"details,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Cause       error     `json:"-"`
}

// Error renders "message: cause (details)", omitting the empty parts.
func (e *XspinError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if e.Details != "" {
		fmt.Fprintf(&b, " (%s)", e.Details)
	}
	return b.String()
}

func (e *XspinError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *XspinError {
	return &XspinError{Type: errorType, Message: message}
}

func Wrap(err error, errorType ErrorType, message string) *XspinError {
	return &XspinError{Type: errorType, Message: message, Cause: err}
}

func (e *XspinError) WithDetails(details string) *XspinError {
	e.Details = details
	return e
}

func (e *XspinError) WithSuggestion(suggestion string) *XspinError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

func (e *XspinError) WithSuggestions(suggestions []string) *XspinError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// ConfigNotFoundError reports an explicitly requested configuration file that
// does not exist.
func ConfigNotFoundError(path string) *XspinError {
	return New(ConfigNotFound, "Configuration file not found").
		WithDetails("path: " + path).
		WithSuggestions([]string{
			"Run 'xspin config init' to create a new configuration",
			"Set XSPINRC to point at an existing configuration file",
		})
}

// ValidationError reports a rejected setting or flag value.
func ValidationError(field string, value string, reason string) *XspinError {
	return New(ValidationFailed, fmt.Sprintf("Invalid %s %q", field, value)).
		WithDetails(reason)
}

// RenderFailedError reports a render hook error. final distinguishes the
// closing frame drawn on stop from a regular tick, since a failed final frame
// can leave the last message on screen.
func RenderFailedError(err error, final bool) *XspinError {
	if final {
		return Wrap(err, RenderFailed, "Final frame failed").
			WithDetails("stage: stop").
			WithSuggestion("The last spinner line may still be on screen; clear it with 'tput el'")
	}
	return Wrap(err, RenderFailed, "Frame failed").
		WithDetails("stage: tick")
}

// RecoveredError turns a value recovered from a panicking render hook into an
// error.
func RecoveredError(v any) *XspinError {
	if err, ok := v.(error); ok {
		return Wrap(err, RenderFailed, "Render hook panicked")
	}
	return New(RenderFailed, "Render hook panicked").
		WithDetails(fmt.Sprintf("panic: %v", v))
}

// HookFailedError reports a terminal session hook that failed at stage
// ("setup" or "teardown"). Only teardown can leave the terminal without echo.
func HookFailedError(stage string, err error) *XspinError {
	xerr := Wrap(err, HookFailed, "Terminal hook failed").
		WithDetails("stage: " + stage)
	if stage == "teardown" {
		xerr.WithSuggestion("Run 'stty sane' if typed input is no longer echoed")
	}
	return xerr.WithSuggestion("Use --stream to pick an output attached to a terminal")
}

// TerminalUnavailableError reports an output stream name that does not map to
// a terminal stream.
func TerminalUnavailableError(name string) *XspinError {
	return New(TerminalUnavailable, "Unknown output stream").
		WithDetails(fmt.Sprintf("stream: %q", name)).
		WithSuggestion("Use one of auto, stdout or stderr")
}

// CommandFailedError reports a child command that could not be started. The
// hint depends on why it could not.
func CommandFailedError(command string, err error) *XspinError {
	xerr := Wrap(err, CommandFailed, "Cannot start command").
		WithDetails("command: " + command)
	switch {
	case stderrors.Is(err, exec.ErrNotFound), stderrors.Is(err, fs.ErrNotExist):
		xerr.WithSuggestion(fmt.Sprintf("Check that '%s' is installed and on PATH", command))
	case stderrors.Is(err, fs.ErrPermission):
		xerr.WithSuggestion(fmt.Sprintf("Make '%s' executable", command))
	default:
		xerr.WithSuggestion("Quote the whole command to run it through the shell")
	}
	return xerr
}

// IsType reports whether err or any error it wraps is an XspinError of
// errorType.
func IsType(err error, errorType ErrorType) bool {
	var xerr *XspinError
	if stderrors.As(err, &xerr) {
		return xerr.Type == errorType
	}
	return false
}

// GetType returns the category of err, or InternalError for uncategorized
// errors.
func GetType(err error) ErrorType {
	var xerr *XspinError
	if stderrors.As(err, &xerr) {
		return xerr.Type
	}
	return InternalError
}
