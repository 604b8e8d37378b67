package output

import (
	"fmt"
	"io"
	"strings"
)

// Color represents ANSI color codes
type Color int

const (
	ColorReset Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
)

// sgr returns the foreground parameter for c, or "" for ColorReset.
func (c Color) sgr() string {
	switch c {
	case ColorRed:
		return "31"
	case ColorGreen:
		return "32"
	case ColorYellow:
		return "33"
	case ColorBlue:
		return "34"
	case ColorMagenta:
		return "35"
	case ColorCyan:
		return "36"
	case ColorWhite:
		return "37"
	case ColorBrightRed:
		return "91"
	case ColorBrightGreen:
		return "92"
	case ColorBrightYellow:
		return "93"
	case ColorBrightBlue:
		return "94"
	case ColorBrightMagenta:
		return "95"
	case ColorBrightCyan:
		return "96"
	case ColorBrightWhite:
		return "97"
	default:
		return ""
	}
}

// Style represents text formatting
type Style int

const (
	StyleNormal Style = iota
	StyleBold
	StyleDim
)

// OutputLevel represents the verbosity level. Quiet keeps only errors.
type OutputLevel int

const (
	LevelQuiet OutputLevel = iota
	LevelNormal
)

// Theme defines the colors used for message kinds and log decorations
type Theme struct {
	Success Color
	Warning Color
	Error   Color
	Info    Color
	Muted   Color
}

// DefaultTheme provides a sensible default color scheme
var DefaultTheme = Theme{
	Success: ColorGreen,
	Warning: ColorYellow,
	Error:   ColorRed,
	Info:    ColorBlue,
	Muted:   ColorWhite,
}

// Formatter handles styled output formatting
type Formatter struct {
	writer      io.Writer
	theme       Theme
	level       OutputLevel
	colorOutput bool
}

// NewFormatter creates a new formatter writing to w
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{
		writer:      w,
		theme:       DefaultTheme,
		level:       LevelNormal,
		colorOutput: isColorSupported(w),
	}
}

// SetLevel changes the output verbosity level
func (f *Formatter) SetLevel(level OutputLevel) {
	f.level = level
}

// SetColorOutput enables or disables color output
func (f *Formatter) SetColorOutput(enabled bool) {
	f.colorOutput = enabled
}

// colorize applies color and style to text if color output is enabled
func (f *Formatter) colorize(text string, color Color, style Style) string {
	if !f.colorOutput {
		return text
	}

	var codes []string
	switch style {
	case StyleBold:
		codes = append(codes, "1")
	case StyleDim:
		codes = append(codes, "2")
	}
	if c := color.sgr(); c != "" {
		codes = append(codes, c)
	}

	if len(codes) == 0 {
		return text
	}
	return fmt.Sprintf("\033[%sm%s\033[0m", strings.Join(codes, ";"), text)
}

// Tint applies t to text if color output is enabled
func (f *Formatter) Tint(text string, t Tint) string {
	if !f.colorOutput {
		return text
	}
	return t.Apply(text)
}
