package terminal

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/hashprobe/pkg/results"
	"github.com/Sumatoshi-tech/hashprobe/pkg/safeconv"
)

// maxCellWidth bounds input columns in result tables.
const maxCellWidth = 32

// RenderResults writes the recorded collisions as a table.
func RenderResults(w io.Writer, records []results.Record, cfg Config) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"#", "Input", "Hash", "Collided with", "Attempt"})

	for i, rec := range records {
		partner := string(rec.CollidesWith)
		if rec.HasCollision() {
			partner = cfg.Colorize(TruncateWithEllipsis(partner, maxCellWidth), ColorRed)
		}

		tbl.AppendRow(table.Row{
			i + 1,
			TruncateWithEllipsis(string(rec.Input), maxCellWidth),
			strconv.FormatUint(uint64(rec.Hash), 10),
			partner,
			humanize.Comma(safeconv.ClampUint64ToInt64(rec.Attempts)),
		})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d records", len(records))})

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("render results: %w", err)
	}

	return nil
}

// RenderStats writes the session statistics as a two-column table.
func RenderStats(w io.Writer, st results.Stats) error {
	fastest := "No collisions found yet"
	if st.FastestCollisionAttempts != nil {
		fastest = humanize.Comma(safeconv.ClampUint64ToInt64(*st.FastestCollisionAttempts)) + " attempts"
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendRows([]table.Row{
		{"Total strings hashed", humanize.Comma(safeconv.ClampUint64ToInt64(st.TotalStringsHashed))},
		{"Total collisions found", humanize.Comma(safeconv.ClampUint64ToInt64(st.TotalCollisionsFound))},
		{"Fastest collision", fastest},
	})

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("render stats: %w", err)
	}

	return nil
}
