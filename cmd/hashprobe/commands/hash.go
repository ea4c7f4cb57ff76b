package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
	"github.com/Sumatoshi-tech/hashprobe/pkg/terminal"
)

// NewHashCommand creates the hash command.
func NewHashCommand(env *Env) *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:   "hash <string>",
		Short: "Hash a string",
		Long: `Hash a string and print the result in hex, decimal and binary.

With --trace every mixing step is printed: the initial value, the five
stages applied to each byte, and the final value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := env.Printer(cmd)

			var obs mixhash.Observer
			if trace {
				p.Title("Verbose hashing display:")
				obs = terminal.NewStepTracer(p.Writer(), p.Config())
			}

			h, err := env.Session.HashTraced(cmd.Context(), []byte(args[0]), obs)
			if err != nil {
				return err
			}

			p.Plain("Input: %s", args[0])
			p.Success("Hash:  %s", terminal.FormatHash(h))

			return nil
		},
	}

	cmd.Flags().BoolVar(&trace, "trace", false, "print every mixing step")

	return cmd
}
