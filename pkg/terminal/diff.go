package terminal

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff markers, visible with or without color.
const (
	deleteOpen  = "[-"
	deleteClose = "-]"
	insertOpen  = "{+"
	insertClose = "+}"
)

// RenderDiff shows the character-level edit from a to b, marking deletions
// as [-x-] and insertions as {+y+}.
func RenderDiff(a, b string, cfg Config) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	var sb strings.Builder

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			sb.WriteString(cfg.Colorize(deleteOpen+d.Text+deleteClose, ColorRed))
		case diffmatchpatch.DiffInsert:
			sb.WriteString(cfg.Colorize(insertOpen+d.Text+insertClose, ColorGreen))
		}
	}

	return sb.String()
}

// EditDistance returns the character-level Levenshtein distance from a to b.
func EditDistance(a, b string) int {
	dmp := diffmatchpatch.New()

	return dmp.DiffLevenshtein(dmp.DiffMain(a, b, false))
}
