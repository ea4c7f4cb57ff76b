package commands

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
	"github.com/Sumatoshi-tech/hashprobe/pkg/reverse"
	"github.com/Sumatoshi-tech/hashprobe/pkg/safeconv"
	"github.com/Sumatoshi-tech/hashprobe/pkg/terminal"
)

// NewReverseCommand creates the reverse command.
func NewReverseCommand(env *Env) *cobra.Command {
	var (
		maxLength int
		trace     bool
	)

	cmd := &cobra.Command{
		Use:   "reverse <hash>",
		Short: "Brute-force a string producing a given hash",
		Long: `Try every string over [a-zA-Z0-9], shortest first, until one hashes to the
target. The target is decimal or 0x-prefixed hex.

The search is exhaustive: 62^5 candidates take seconds, 62^8 take hours.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := mixhash.ParseHash(args[0])
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("max-length") {
				maxLength = env.Config.Reverse.MaxLength
			}

			return runReverse(cmd.Context(), env, env.Printer(cmd), target, maxLength, trace)
		},
	}

	cmd.Flags().IntVar(&maxLength, "max-length", 0, "longest string to try, up to reverse.length_limit")
	cmd.Flags().BoolVar(&trace, "trace", false, "print every candidate string")

	return cmd
}

func runReverse(ctx context.Context, env *Env, p *terminal.Printer, target uint32, maxLength int, trace bool) error {
	if maxLength <= 0 {
		maxLength = env.Session.Config().MaxLength
	}

	p.Title("Attempting reverse lookup for hash: %d", target)

	var opts []reverse.Option
	if trace {
		opts = append(opts, reverse.WithObserver(reverse.ObserverFunc(func(c reverse.Candidate) {
			p.Detail("Attempting string: %s", c.Value)
		})))
	}

	res, err := env.Session.ReverseLookup(ctx, target, maxLength, opts...)
	if err != nil {
		return err
	}

	if res.Found() {
		p.Success("Match found! String: %s", res.Input)
	} else {
		p.Failure("No string found for the given hash within the maximum length of %d characters.", maxLength)
	}

	p.Detail("Candidates tried: %s in %s",
		humanize.Comma(safeconv.ClampUint64ToInt64(res.Candidates)),
		res.Duration.Round(time.Millisecond))

	return nil
}
