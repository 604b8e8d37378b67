// Package config provides YAML-based configuration for the spinner and its logging.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/johnconnor-sec/xspin-go/internal/errors"
	"github.com/johnconnor-sec/xspin-go/internal/output"
	"github.com/johnconnor-sec/xspin-go/internal/sched"
)

// Config represents the complete xspin configuration.
type Config struct {
	Spinner SpinnerConfig `yaml:"spinner" json:"spinner"`
	Log     LogConfig     `yaml:"log" json:"log"`

	// Internal metadata
	ConfigPath string `yaml:"-" json:"-"`
}

// SpinnerConfig controls the live display.
type SpinnerConfig struct {
	// Pause between drawing a frame and erasing it
	Delay time.Duration `yaml:"delay" json:"delay"`

	// Animation glyphs, one per tick
	Frames []string `yaml:"frames" json:"frames"`

	// Glyph color: a name such as "cyan" or a hex color such as "#5fafff"
	Color string `yaml:"color" json:"color"`

	// Scheduling model: "thread" or "cooperative"
	Scheduler string `yaml:"scheduler" json:"scheduler"`

	// Cut messages to fit on one terminal row
	Truncate bool `yaml:"truncate" json:"truncate"`

	// Output stream: "auto", "stdout" or "stderr"
	Stream string `yaml:"stream" json:"stream"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	// Log file; empty means stderr
	File string `yaml:"file" json:"file"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Spinner: SpinnerConfig{
			Delay:     80 * time.Millisecond,
			Frames:    []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
			Color:     "cyan",
			Scheduler: sched.Thread.String(),
			Truncate:  true,
			Stream:    "auto",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// FindConfigPath locates the configuration file. The second result reports
// whether the path was chosen explicitly through $XSPINRC.
func FindConfigPath() (string, bool, error) {
	// Priority order for config file locations:
	// 1. $XSPINRC environment variable
	// 2. $XDG_CONFIG_HOME/xspin/config.yml
	// 3. $HOME/.config/xspin/config.yml

	if path := os.Getenv("XSPINRC"); path != "" {
		return path, true, nil
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", false, errors.Wrap(err, errors.ConfigNotFound, "Unable to determine home directory")
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "xspin", "config.yml"), false, nil
}

// ApplyEnv overrides fields from XSPIN_DELAY, XSPIN_SCHEDULER, XSPIN_COLOR and
// XSPIN_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("XSPIN_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.ValidationError("XSPIN_DELAY", v, "not a duration such as 80ms")
		}
		c.Spinner.Delay = d
	}
	if v := os.Getenv("XSPIN_SCHEDULER"); v != "" {
		c.Spinner.Scheduler = v
	}
	if v, ok := os.LookupEnv("XSPIN_COLOR"); ok {
		c.Spinner.Color = v
	}
	if v := os.Getenv("XSPIN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%s': %s", e.Field, e.Value, e.Message)
}

// ValidationErrors holds multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (e *ValidationErrors) Error() string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var validationErrors []ValidationError
	add := func(field, value, message string) {
		validationErrors = append(validationErrors, ValidationError{Field: field, Value: value, Message: message})
	}

	if c.Spinner.Delay <= 0 {
		add("spinner.delay", c.Spinner.Delay.String(), "delay must be positive")
	} else if c.Spinner.Delay > time.Minute {
		add("spinner.delay", c.Spinner.Delay.String(), "delay must not exceed one minute")
	}

	if len(c.Spinner.Frames) == 0 {
		add("spinner.frames", "[]", "at least one frame is required")
	}
	for i, f := range c.Spinner.Frames {
		switch {
		case f == "":
			add(fmt.Sprintf("spinner.frames[%d]", i), f, "frame cannot be empty")
		case strings.ContainsAny(f, "\r\n"):
			add(fmt.Sprintf("spinner.frames[%d]", i), f, "frame must fit on one line")
		}
	}

	if _, err := output.ParseTint(c.Spinner.Color); err != nil {
		add("spinner.color", c.Spinner.Color, err.Error())
	}

	if _, ok := sched.ParseKind(c.Spinner.Scheduler); !ok {
		add("spinner.scheduler", c.Spinner.Scheduler, "must be 'thread' or 'cooperative'")
	}

	if !slices.Contains([]string{"", "auto", "stdout", "stderr"}, c.Spinner.Stream) {
		add("spinner.stream", c.Spinner.Stream, "must be 'auto', 'stdout' or 'stderr'")
	}

	if _, err := output.ParseLogLevel(c.Log.Level); err != nil {
		add("log.level", c.Log.Level, err.Error())
	}
	if _, err := output.ParseLogFormat(c.Log.Format); err != nil {
		add("log.format", c.Log.Format, err.Error())
	}

	if len(validationErrors) > 0 {
		return &ValidationErrors{Errors: validationErrors}
	}
	return nil
}

// Kind returns the configured scheduling model.
func (c *Config) Kind() sched.Kind {
	kind, _ := sched.ParseKind(c.Spinner.Scheduler)
	return kind
}

// Tint returns the configured glyph color.
func (c *Config) Tint() output.Tint {
	tint, _ := output.ParseTint(c.Spinner.Color)
	return tint
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger() (*output.Logger, error) {
	level, err := output.ParseLogLevel(c.Log.Level)
	if err != nil {
		return nil, errors.ValidationError("log.level", c.Log.Level, err.Error())
	}
	format, err := output.ParseLogFormat(c.Log.Format)
	if err != nil {
		return nil, errors.ValidationError("log.format", c.Log.Format, err.Error())
	}

	if c.Log.File != "" {
		return output.CreateFileLogger(c.Log.File, level, format)
	}
	return output.NewLogger().SetLevel(level).SetFormat(format), nil
}
