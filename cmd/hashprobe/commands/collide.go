package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hashprobe/pkg/collision"
	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
	"github.com/Sumatoshi-tech/hashprobe/pkg/results"
	"github.com/Sumatoshi-tech/hashprobe/pkg/safeconv"
	"github.com/Sumatoshi-tech/hashprobe/pkg/terminal"
)

// progressBarWidth is the bar width of the collision progress line.
const progressBarWidth = 30

// collideOptions are the knobs of one collision run.
type collideOptions struct {
	attempts  uint64
	seed      uint64
	tableSize int
	every     uint64
	delay     time.Duration
	trace     bool
	progress  bool
}

// NewCollideCommand creates the collide command.
func NewCollideCommand(env *Env) *cobra.Command {
	var (
		opts collideOptions
		save bool
	)

	cmd := &cobra.Command{
		Use:   "collide",
		Short: "Search for two random strings landing in the same bucket",
		Long: `Generate random strings of 1 to 12 characters and store their hashes in a
fixed-size table until a bucket already holds a different string.

Flags left unset fall back to the collision section of the configuration.
With --save, results already in the results file are loaded first and the
file is rewritten after the search.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := env.Config.Collision
			flags := cmd.Flags()

			if !flags.Changed("attempts") {
				opts.attempts = cfg.MaxAttempts
			}

			if !flags.Changed("seed") {
				opts.seed = cfg.Seed
			}

			if !flags.Changed("table-size") {
				opts.tableSize = cfg.TableSize
			}

			if !flags.Changed("delay") {
				opts.delay = cfg.Delay
			}

			opts.every = cfg.ProgressEvery
			opts.progress = !env.Quiet

			if save {
				err := loadResults(env, true)
				if err != nil {
					return err
				}
			}

			_, err := runCollision(cmd.Context(), env, env.Printer(cmd), opts)
			if err != nil {
				return err
			}

			if save {
				return saveResults(env, env.Printer(cmd))
			}

			return nil
		},
	}

	cmd.Flags().Uint64Var(&opts.attempts, "attempts", 0, "maximum number of random strings to try")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed; 0 seeds from the clock")
	cmd.Flags().IntVar(&opts.tableSize, "table-size", 0, "number of buckets in the search table")
	cmd.Flags().DurationVar(&opts.delay, "delay", 0, "pause after every attempt")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "print every generated string")
	cmd.Flags().BoolVar(&save, "save", false, "append the outcome to the results file")

	return cmd
}

// runCollision runs one search through the session and prints the outcome.
// A full result store is reported but is not an error.
func runCollision(
	ctx context.Context, env *Env, p *terminal.Printer, opts collideOptions,
) (collision.Outcome, error) {
	p.Title("Searching for a collision (%s attempts, %s buckets)...",
		humanize.Comma(safeconv.ClampUint64ToInt64(opts.attempts)),
		humanize.Comma(int64(opts.tableSize)))

	obs := &progressObserver{
		p:        p,
		total:    opts.attempts,
		every:    opts.every,
		delay:    opts.delay,
		trace:    opts.trace,
		progress: opts.progress && !opts.trace,
	}

	finderOpts := []collision.Option{collision.WithTableSize(opts.tableSize)}
	if obs.active() {
		finderOpts = append(finderOpts, collision.WithObserver(obs))
	}

	out, err := env.Session.FindCollision(ctx, opts.attempts, NewSource(opts.seed), finderOpts...)
	obs.finish(out.Attempts)

	if err != nil && !errors.Is(err, results.ErrCapacityExceeded) {
		return out, err
	}

	printOutcome(p, out, opts.attempts)

	if err != nil {
		p.Notice("Result store is full (%d records); this collision was not recorded.",
			env.Session.Store().Capacity())
	}

	return out, nil
}

func printOutcome(p *terminal.Printer, out collision.Outcome, maxAttempts uint64) {
	if !out.Found() {
		p.Failure("No collision found within %s attempts.",
			humanize.Comma(safeconv.ClampUint64ToInt64(maxAttempts)))
		p.Detail("Elapsed: %s", out.Duration.Round(time.Millisecond))

		return
	}

	p.Success("Collision found after %s attempts!",
		humanize.Comma(safeconv.ClampUint64ToInt64(out.Attempts)))
	p.Plain("String 1: %s", out.Input)
	p.Plain("Hash 1:   %s", terminal.FormatHash(out.Hash))
	p.Plain("String 2: %s", out.CollidesWith)
	p.Plain("Hash 2:   %s", terminal.FormatHash(mixhash.Sum32(out.CollidesWith)))
	p.Detail("Elapsed: %s", out.Duration.Round(time.Millisecond))
}

// progressObserver draws the progress line, traces candidates and applies
// the per-attempt delay.
type progressObserver struct {
	p        *terminal.Printer
	total    uint64
	every    uint64
	delay    time.Duration
	trace    bool
	progress bool
	drawn    bool
}

func (o *progressObserver) active() bool {
	return o.trace || o.delay > 0 || (o.progress && o.every > 0)
}

// ObserveAttempt implements collision.Observer.
func (o *progressObserver) ObserveAttempt(ctx context.Context, ev collision.Event) {
	if o.trace {
		o.p.Detail("Attempt %d: %s (hash %d, bucket %d)", ev.Index+1, ev.Candidate, ev.Hash, ev.Bucket)
	}

	if o.progress && o.every > 0 && ev.Index%o.every == 0 {
		fmt.Fprint(o.p.Writer(), "\r"+terminal.FormatProgress(ev.Index, o.total, progressBarWidth))
		o.drawn = true
	}

	if o.delay > 0 {
		timer := time.NewTimer(o.delay)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}

		timer.Stop()
	}
}

func (o *progressObserver) finish(done uint64) {
	if !o.drawn {
		return
	}

	fmt.Fprintln(o.p.Writer(), "\r"+terminal.FormatProgress(done, o.total, progressBarWidth))
}
