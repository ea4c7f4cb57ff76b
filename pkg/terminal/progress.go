package terminal

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/hashprobe/pkg/safeconv"
)

const (
	barFilled = "█"
	barEmpty  = "░"
)

// DrawProgressBar fills width cells in proportion to value, which is clamped
// to [0, 1]: DrawProgressBar(0.7, 10) is "███████░░░".
func DrawProgressBar(value float64, width int) string {
	filled := int(min(max(value, 0), 1) * float64(width))

	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, width-filled)
}

// FormatProgress renders search progress such as "[███░░░]  30% (300/1,000)".
// A zero total reads as no progress.
func FormatProgress(done, total uint64, width int) string {
	ratio := 0.0
	if total > 0 {
		ratio = min(float64(done)/float64(total), 1)
	}

	return fmt.Sprintf("[%s] %3d%% (%s/%s)",
		DrawProgressBar(ratio, width),
		int(100*ratio),
		humanize.Comma(safeconv.ClampUint64ToInt64(done)),
		humanize.Comma(safeconv.ClampUint64ToInt64(total)))
}
