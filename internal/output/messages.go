package output

import "fmt"

// Success prints a success message
func (f *Formatter) Success(format string, args ...any) {
	if f.level == LevelQuiet {
		return
	}
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(f.writer, f.colorize("✓ "+message, f.theme.Success, StyleBold))
}

// Error prints an error message
func (f *Formatter) Error(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(f.writer, f.colorize("✗ "+message, f.theme.Error, StyleBold))
}

// Warning prints a warning message
func (f *Formatter) Warning(format string, args ...any) {
	if f.level == LevelQuiet {
		return
	}
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(f.writer, f.colorize("⚠ "+message, f.theme.Warning, StyleBold))
}

// Info prints an info message
func (f *Formatter) Info(format string, args ...any) {
	if f.level == LevelQuiet {
		return
	}
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(f.writer, f.colorize("ℹ "+message, f.theme.Info, StyleNormal))
}

// SuccessText returns a styled success line without printing it
func (f *Formatter) SuccessText(format string, args ...any) string {
	return f.colorize("✓ "+fmt.Sprintf(format, args...), f.theme.Success, StyleBold)
}

// ErrorText returns a styled error line without printing it
func (f *Formatter) ErrorText(format string, args ...any) string {
	return f.colorize("✗ "+fmt.Sprintf(format, args...), f.theme.Error, StyleBold)
}
