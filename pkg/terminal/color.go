package terminal

import "github.com/fatih/color"

// Color names an output role.
type Color int

// Color constants.
const (
	ColorNone Color = iota
	ColorGreen
	ColorYellow
	ColorRed
	ColorBlue
	ColorGray
	ColorBold
)

var colorAttributes = map[Color][]color.Attribute{
	ColorGreen:  {color.FgGreen},
	ColorYellow: {color.FgYellow},
	ColorRed:    {color.FgRed},
	ColorBlue:   {color.FgBlue},
	ColorGray:   {color.FgHiBlack},
	ColorBold:   {color.Bold},
}

// Colorize applies color to text. If NoColor is true, returns text unchanged.
func (c Config) Colorize(text string, col Color) string {
	attrs, ok := colorAttributes[col]
	if c.NoColor || !ok {
		return text
	}

	return color.New(attrs...).Sprint(text)
}
