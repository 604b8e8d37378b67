// Package security handles environment variables passed to child commands:
// parsing KEY=VALUE assignments and redacting secrets before they are logged.
package security

import (
	"maps"
	"regexp"
	"strings"

	"github.com/johnconnor-sec/xspin-go/internal/errors"
)

// SensitivePattern defines patterns for sensitive environment variables
type SensitivePattern struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// VisibilityLevel controls how much of a sensitive value is shown
type VisibilityLevel int

const (
	VisibilityMasked  VisibilityLevel = iota // Replace with a category marker
	VisibilityLimited                        // Show first/last chars only
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// EnvSanitizer redacts environment values for logs
type EnvSanitizer struct {
	sensitivePatterns []SensitivePattern
	safeVars          map[string]bool
	visibilityLevel   VisibilityLevel
}

// NewEnvSanitizer creates a sanitizer with the default patterns
func NewEnvSanitizer() *EnvSanitizer {
	return &EnvSanitizer{
		sensitivePatterns: []SensitivePattern{
			// More specific patterns first
			{
				Pattern:     regexp.MustCompile(`(?i).*(aws|gcp|azure|cloud).*(key|token|secret|password|pass|pwd|auth|access).*`),
				Replacement: "[REDACTED-CLOUD]",
			},
			{
				Pattern:     regexp.MustCompile(`(?i).*(db|database|sql).*(pass|pwd|password|secret).*`),
				Replacement: "[REDACTED-DATABASE]",
			},
			{
				Pattern:     regexp.MustCompile(`(?i).*(key|token|secret|password|pass|pwd|auth|api).*`),
				Replacement: "[REDACTED-SECRET]",
			},
		},
		safeVars: map[string]bool{
			"HOME":            true,
			"USER":            true,
			"PATH":            true,
			"TERM":            true,
			"SHELL":           true,
			"LANG":            true,
			"LC_ALL":          true,
			"TZ":              true,
			"COLUMNS":         true,
			"LINES":           true,
			"CI":              true,
			"NO_COLOR":        true,
			"FORCE_COLOR":     true,
			"XSPINRC":         true,
			"XSPIN_DELAY":     true,
			"XSPIN_SCHEDULER": true,
			"XSPIN_COLOR":     true,
			"XSPIN_LOG_LEVEL": true,
			"XDG_CONFIG_HOME": true,
		},
		visibilityLevel: VisibilityMasked,
	}
}

// SetVisibilityLevel sets how sensitive values are shown
func (es *EnvSanitizer) SetVisibilityLevel(level VisibilityLevel) {
	es.visibilityLevel = level
}

// IsSensitive checks if an environment variable name matches sensitive patterns
func (es *EnvSanitizer) IsSensitive(name string) bool {
	if es.safeVars[name] {
		return false
	}
	for _, pattern := range es.sensitivePatterns {
		if pattern.Pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// SanitizeValue returns value as it may appear in a log line. Values of
// variables that are not sensitive pass through unchanged.
func (es *EnvSanitizer) SanitizeValue(name, value string) string {
	if value == "" || !es.IsSensitive(name) {
		return value
	}
	if es.visibilityLevel == VisibilityLimited {
		return limitedValue(value)
	}
	for _, pattern := range es.sensitivePatterns {
		if pattern.Pattern.MatchString(name) {
			return pattern.Replacement
		}
	}
	return "[REDACTED]"
}

// SanitizeAll returns a copy of env with every value sanitized.
func (es *EnvSanitizer) SanitizeAll(env map[string]string) map[string]string {
	result := maps.Clone(env)
	for name, value := range result {
		result[name] = es.SanitizeValue(name, value)
	}
	return result
}

// limitedValue shows only the first and last few characters of a value
func limitedValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 16 {
		return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
	}
	return value[:3] + strings.Repeat("*", len(value)-6) + value[len(value)-3:]
}

// ParseAssignments turns KEY=VALUE strings into a map. Later assignments win.
// A missing '=' or a name that is not a valid identifier is a validation error.
func ParseAssignments(assignments []string) (map[string]string, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	env := make(map[string]string, len(assignments))
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		if !ok {
			return nil, errors.ValidationError("--env", a, "expected KEY=VALUE")
		}
		if !namePattern.MatchString(name) {
			return nil, errors.ValidationError("--env", name, "not a valid variable name")
		}
		env[name] = value
	}
	return env, nil
}
