package output

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]Color{
	"red":            ColorRed,
	"green":          ColorGreen,
	"yellow":         ColorYellow,
	"blue":           ColorBlue,
	"magenta":        ColorMagenta,
	"cyan":           ColorCyan,
	"white":          ColorWhite,
	"bright-red":     ColorBrightRed,
	"bright-green":   ColorBrightGreen,
	"bright-yellow":  ColorBrightYellow,
	"bright-blue":    ColorBrightBlue,
	"bright-magenta": ColorBrightMagenta,
	"bright-cyan":    ColorBrightCyan,
	"bright-white":   ColorBrightWhite,
}

// Tint is a single foreground color, either one of the named ANSI colors or a
// 24-bit color given as hex. The zero Tint leaves text unchanged.
type Tint struct {
	params string
}

// ParseTint parses "", a color name such as "cyan", or a hex color such as
// "#5fafff".
func ParseTint(s string) (Tint, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return Tint{}, nil
	}
	if c, ok := namedColors[s]; ok {
		return Tint{params: c.sgr()}, nil
	}
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return Tint{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return Tint{params: fmt.Sprintf("38;2;%d;%d;%d", r, g, b)}, nil
	}
	return Tint{}, fmt.Errorf("unknown color %q", s)
}

// IsZero reports whether t applies no color.
func (t Tint) IsZero() bool {
	return t.params == ""
}

// Apply wraps text in the SGR sequences for t.
func (t Tint) Apply(text string) string {
	if t.params == "" {
		return text
	}
	return "\033[" + t.params + "m" + text + "\033[0m"
}
