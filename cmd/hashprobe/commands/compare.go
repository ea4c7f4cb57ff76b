package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hashprobe/pkg/terminal"
)

// NewCompareCommand creates the compare command.
func NewCompareCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Hash two strings and compare the results",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmp, err := env.Session.Compare(cmd.Context(), []byte(args[0]), []byte(args[1]))
			if err != nil {
				return err
			}

			printComparison(env.Printer(cmd), args[0], args[1], cmp.HashA, cmp.HashB, cmp.Match)

			return nil
		},
	}
}

func printComparison(p *terminal.Printer, a, b string, ha, hb uint32, match bool) {
	p.Plain("Hash of %q: %s", a, terminal.FormatHash(ha))
	p.Plain("Hash of %q: %s", b, terminal.FormatHash(hb))

	if match {
		p.Success("Hashes match! Possible collision.")
	} else {
		p.Failure("Hashes do not match.")
	}

	if a != b {
		p.Plain("Diff:  %s (edit distance %d)", terminal.RenderDiff(a, b, p.Config()), terminal.EditDistance(a, b))
	}
}
