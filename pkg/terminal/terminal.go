// Package terminal renders hashprobe output: hash traces, progress, headers,
// result tables and string diffs.
package terminal

import (
	"os"
	"strconv"

	"github.com/fatih/color"
)

// Width bounds in columns.
const (
	DefaultWidth = 80
	MinWidth     = 60
	MaxWidth     = 120
)

// Config controls rendering for one output stream.
type Config struct {
	Width   int
	NoColor bool
}

// NewConfig sizes output from $COLUMNS and turns color off when NO_COLOR is
// set or stdout is not a terminal.
func NewConfig() Config {
	return Config{Width: DetectWidth(), NoColor: color.NoColor}
}

// DetectWidth reads $COLUMNS, clamped to [MinWidth, MaxWidth]. Unset or
// unparsable values give DefaultWidth.
func DetectWidth() int {
	columns, err := strconv.Atoi(os.Getenv("COLUMNS"))
	if err != nil {
		return DefaultWidth
	}

	return min(max(columns, MinWidth), MaxWidth)
}
