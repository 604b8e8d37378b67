// Package config - YAML configuration loading and parsing
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/johnconnor-sec/xspin-go/internal/errors"
)

// Load reads the configuration at configPath. Fields missing from the file keep
// their defaults.
func Load(configPath string) (*Config, error) {
	if !fileExists(configPath) {
		return nil, errors.ConfigNotFoundError(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ConfigNotFound, "Failed to read configuration file").
			WithDetails(fmt.Sprintf("Path: %s", configPath)).
			WithSuggestion("Check file permissions and path")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, errors.ConfigInvalid, "Invalid YAML configuration").
			WithDetails(fmt.Sprintf("Parse error: %v", err)).
			WithSuggestions([]string{
				"Check YAML syntax",
				"Durations need a unit, for example '80ms'",
				"Run 'xspin config example' to see every field",
			})
	}
	config.ConfigPath = configPath

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ConfigInvalid, "Configuration validation failed").
			WithDetails(err.Error()).
			WithSuggestion("Run 'xspin config validate' for detailed validation")
	}

	return config, nil
}

// Resolve finds and loads the configuration, then applies environment
// overrides. A missing file at the default location yields the defaults; a
// missing file named by $XSPINRC is an error.
func Resolve() (*Config, error) {
	configPath, explicit, err := FindConfigPath()
	if err != nil {
		return nil, err
	}

	var config *Config
	if !explicit && !fileExists(configPath) {
		config = DefaultConfig()
	} else if config, err = Load(configPath); err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ConfigInvalid, "Environment overrides are invalid").
			WithDetails(err.Error())
	}
	return config, nil
}

// Save writes the configuration to the specified path.
func Save(config *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return errors.Wrap(err, errors.InternalError, "Cannot create config directory").
			WithDetails(fmt.Sprintf("Path: %s", filepath.Dir(configPath)))
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, errors.InternalError, "Failed to serialize configuration")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, errors.InternalError, "Cannot write configuration file").
			WithDetails(fmt.Sprintf("Path: %s", configPath))
	}

	return nil
}

// Example is an annotated configuration file listing every field.
const Example = `# Example xspin configuration (YAML)
spinner:
  # Pause between drawing a frame and erasing it
  delay: 80ms
  frames: ["⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"]
  # A color name (red, bright-cyan, ...) or a hex color; "none" disables color
  color: "#5fafff"
  # thread: a dedicated goroutine; cooperative: a task on a shared event loop
  scheduler: thread
  # Cut messages so the frame fits on one row
  truncate: true
  # auto picks stdout when it is a terminal, otherwise stderr
  stream: auto

log:
  level: warn
  format: text
  # Write logs here instead of stderr so they do not tear the live frame
  file: ""
`
