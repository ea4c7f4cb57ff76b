package terminal

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

const ellipsis = "..."

// Heavy box runes used by DrawHeader.
const (
	BoxHeavyTopLeft     = "┏"
	BoxHeavyTopRight    = "┓"
	BoxHeavyBottomLeft  = "┗"
	BoxHeavyBottomRight = "┛"
	boxHeavyHorizontal  = "━"
	boxHeavyVertical    = "┃"
)

// TruncateWithEllipsis shortens s to at most maxWidth display columns,
// marking the cut with "...". Widths too narrow for the marker get dots only.
func TruncateWithEllipsis(s string, maxWidth int) string {
	if text.StringWidthWithoutEscSequences(s) <= maxWidth {
		return s
	}

	if maxWidth <= len(ellipsis) {
		return strings.Repeat(".", max(maxWidth, 0))
	}

	return text.Snip(s, maxWidth, ellipsis)
}

// DrawHeader frames title and an optional right-aligned note in a heavy
// three-line box. The box grows past width when the text needs it.
func DrawHeader(title, right string, width int) string {
	const margin = 1

	titleWidth := text.StringWidthWithoutEscSequences(title)
	rightWidth := text.StringWidthWithoutEscSequences(right)

	inner := max(width-2, titleWidth+rightWidth+2*margin+2)
	body := inner - 2*margin

	line := text.Pad(title, body, ' ')
	if right != "" {
		line = title + strings.Repeat(" ", max(body-titleWidth-rightWidth, 1)) + right
	}

	rule := strings.Repeat(boxHeavyHorizontal, inner)
	gap := strings.Repeat(" ", margin)

	return BoxHeavyTopLeft + rule + BoxHeavyTopRight + "\n" +
		boxHeavyVertical + gap + line + gap + boxHeavyVertical + "\n" +
		BoxHeavyBottomLeft + rule + BoxHeavyBottomRight
}
