package output

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the importance level of a log message
type LogLevel int

const (
	LogLevelTrace LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelTrace:
		return "TRACE"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a configuration value such as "warn" to a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LogLevelTrace, nil
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "fatal":
		return LogLevelFatal, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// LogFormat represents the output format for logs
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
)

// ParseLogFormat maps "text" or "json" to a LogFormat.
func ParseLogFormat(s string) (LogFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return LogFormatText, nil
	case "json":
		return LogFormatJSON, nil
	default:
		return LogFormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
	Caller    string         `json:"caller,omitempty"`
}

// Logger handles structured logging with multiple outputs and formats. A Logger
// and every logger derived from it with WithField share one write lock, so render
// loop goroutines can log concurrently without interleaving entries.
type Logger struct {
	level         LogLevel
	format        LogFormat
	outputs       []io.Writer
	fields        map[string]any
	formatter     *Formatter
	includeCaller bool
	timeFormat    string
	mu            *sync.Mutex
}

// NewLogger creates a new structured logger
func NewLogger() *Logger {
	return &Logger{
		level:      LogLevelInfo,
		format:     LogFormatText,
		outputs:    []io.Writer{os.Stderr},
		fields:     make(map[string]any),
		formatter:  NewFormatter(os.Stderr),
		timeFormat: time.RFC3339,
		mu:         &sync.Mutex{},
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) *Logger {
	l.level = level
	return l
}

// SetFormat sets the output format (text or JSON)
func (l *Logger) SetFormat(format LogFormat) *Logger {
	l.format = format
	return l
}

// SetOutputs replaces all output writers
func (l *Logger) SetOutputs(outputs ...io.Writer) *Logger {
	l.outputs = outputs
	if len(outputs) == 1 {
		l.formatter = NewFormatter(outputs[0])
	}
	return l
}

// WithField returns a logger that adds key=value to every entry
func (l *Logger) WithField(key string, value any) *Logger {
	derived := *l
	derived.fields = make(map[string]any, len(l.fields)+1)
	maps.Copy(derived.fields, l.fields)
	derived.fields[key] = value
	return &derived
}

// WithFields adds multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	derived := l
	for k, v := range fields {
		derived = derived.WithField(k, v)
	}
	return derived
}

// WithError adds an error field
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// EnableCaller includes caller information in log entries
func (l *Logger) EnableCaller() *Logger {
	l.includeCaller = true
	return l
}

// SetTimeFormat sets the timestamp format
func (l *Logger) SetTimeFormat(format string) *Logger {
	l.timeFormat = format
	return l
}

// Enabled reports whether entries at level would be written
func (l *Logger) Enabled(level LogLevel) bool {
	return level >= l.level
}

func (l *Logger) log(level LogLevel, message string, fields ...map[string]any) {
	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    make(map[string]any, len(l.fields)),
	}
	maps.Copy(entry.Fields, l.fields)
	for _, fieldMap := range fields {
		maps.Copy(entry.Fields, fieldMap)
	}

	if l.includeCaller {
		if pc, file, line, ok := runtime.Caller(2); ok {
			funcName := runtime.FuncForPC(pc).Name()
			entry.Caller = fmt.Sprintf("%s:%d:%s", filepath.Base(file), line, filepath.Base(funcName))
		}
	}

	if len(entry.Fields) == 0 {
		entry.Fields = nil
	}

	l.writeEntry(entry)
}

func (l *Logger) writeEntry(entry LogEntry) {
	var line string

	switch l.format {
	case LogFormatJSON:
		if data, err := json.Marshal(entry); err == nil {
			line = string(data) + "\n"
		} else {
			line = fmt.Sprintf(`{"level":"ERROR","message":"Failed to marshal log entry: %v"}%s`, err, "\n")
		}
	default:
		line = l.formatTextEntry(entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.outputs {
		fmt.Fprint(w, line)
	}
}

func (l *Logger) formatTextEntry(entry LogEntry) string {
	var parts []string

	if l.timeFormat == time.RFC3339 {
		parts = append(parts, entry.Timestamp.Format("15:04:05"))
	} else {
		parts = append(parts, entry.Timestamp.Format(l.timeFormat))
	}

	parts = append(parts, l.formatLogLevel(entry.Level))

	if entry.Caller != "" {
		parts = append(parts, l.formatter.colorize(fmt.Sprintf("(%s)", entry.Caller), l.formatter.theme.Muted, StyleDim))
	}

	parts = append(parts, entry.Message)

	if len(entry.Fields) > 0 {
		parts = append(parts, l.formatFields(entry.Fields))
	}

	return strings.Join(parts, " ") + "\n"
}

func (l *Logger) formatLogLevel(level LogLevel) string {
	var color Color
	style := StyleNormal

	switch level {
	case LogLevelTrace, LogLevelDebug:
		color, style = l.formatter.theme.Muted, StyleDim
	case LogLevelInfo:
		color = l.formatter.theme.Info
	case LogLevelWarn:
		color, style = l.formatter.theme.Warning, StyleBold
	case LogLevelError, LogLevelFatal:
		color, style = l.formatter.theme.Error, StyleBold
	default:
		color = l.formatter.theme.Muted
	}

	return l.formatter.colorize(fmt.Sprintf("[%s]", level), color, style)
}

// formatFields renders fields sorted by key
func (l *Logger) formatFields(fields map[string]any) string {
	pairs := make([]string, 0, len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		pair := fmt.Sprintf("%s=%v", k, fields[k])
		switch k {
		case "error":
			pair = l.formatter.colorize(pair, l.formatter.theme.Error, StyleNormal)
		case "duration", "elapsed":
			pair = l.formatter.colorize(pair, l.formatter.theme.Success, StyleNormal)
		case "component", "scheduler":
			pair = l.formatter.colorize(pair, l.formatter.theme.Info, StyleNormal)
		}
		pairs = append(pairs, pair)
	}

	return fmt.Sprintf("[%s]", strings.Join(pairs, " "))
}

// LogDuration logs how long an operation took, escalating slow ones
func (l *Logger) LogDuration(operation string, duration time.Duration, fields ...map[string]any) {
	durationFields := map[string]any{
		"operation": operation,
		"duration":  duration.String(),
	}
	for _, fieldMap := range fields {
		maps.Copy(durationFields, fieldMap)
	}

	if duration > 5*time.Second {
		l.Info("Slow operation completed", durationFields)
	} else {
		l.Debug("Operation completed", durationFields)
	}
}

// Trace logs a trace message
func (l *Logger) Trace(message string, fields ...map[string]any) {
	l.log(LogLevelTrace, message, fields...)
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields ...map[string]any) {
	l.log(LogLevelDebug, message, fields...)
}

// Info logs an info message
func (l *Logger) Info(message string, fields ...map[string]any) {
	l.log(LogLevelInfo, message, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields ...map[string]any) {
	l.log(LogLevelWarn, message, fields...)
}

// Error logs an error message
func (l *Logger) Error(message string, fields ...map[string]any) {
	l.log(LogLevelError, message, fields...)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// CreateFileLogger creates a logger that writes to a file, keeping log output
// off the terminal the live display draws on.
func CreateFileLogger(filename string, level LogLevel, format LogFormat) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := NewLogger().
		SetLevel(level).
		SetFormat(format).
		SetOutputs(file)
	logger.formatter.SetColorOutput(false)

	return logger, nil
}

var (
	globalMu     sync.RWMutex
	globalLogger = NewLogger()
)

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

func Debug(message string, fields ...map[string]any) {
	GetGlobalLogger().Debug(message, fields...)
}

func Info(message string, fields ...map[string]any) {
	GetGlobalLogger().Info(message, fields...)
}

func Warn(message string, fields ...map[string]any) {
	GetGlobalLogger().Warn(message, fields...)
}

func Error(message string, fields ...map[string]any) {
	GetGlobalLogger().Error(message, fields...)
}

func Infof(format string, args ...any) {
	GetGlobalLogger().Infof(format, args...)
}
