package commands

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hashprobe/pkg/results"
	"github.com/Sumatoshi-tech/hashprobe/pkg/terminal"
)

// NewResultsCommand creates the results command group.
func NewResultsCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show, convert and inspect saved results",
		Long: `Work with the results file named by --results (or results.path in the
configuration). The file extension selects the format: .txt, .json or .yaml,
optionally followed by .lz4 for a compressed snapshot.`,
	}

	cmd.AddCommand(newResultsShowCommand(env))
	cmd.AddCommand(newResultsStatsCommand(env))
	cmd.AddCommand(newResultsSaveCommand(env))
	cmd.AddCommand(newResultsLoadCommand(env))

	return cmd
}

func newResultsShowCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print the recorded collisions as a table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := results.LoadFile(resultsPath(env, args))
			if err != nil {
				return err
			}

			p := env.Printer(cmd)
			p.Header("Hash Results", resultsPath(env, args))

			return terminal.RenderResults(p.Writer(), snap.Records, p.Config())
		},
	}
}

func newResultsStatsCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Print the statistics of a results file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := results.LoadFile(resultsPath(env, args))
			if err != nil {
				return err
			}

			store := env.Session.Store()

			err = store.Restore(snap)
			if err != nil {
				return err
			}

			p := env.Printer(cmd)
			p.Header("Statistics", resultsPath(env, args))

			return terminal.RenderStats(p.Writer(), store.Stats())
		},
	}
}

func newResultsSaveCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "save <file>",
		Short: "Copy the results file to another file, converting the format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := results.LoadFile(env.Config.Results.Path)
			if err != nil {
				return err
			}

			err = results.SaveFile(args[0], snap)
			if err != nil {
				return err
			}

			env.Printer(cmd).Success("Saved %d records to %s", len(snap.Records), args[0])

			return nil
		},
	}
}

func newResultsLoadCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Validate a results file and make it the current results file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := results.LoadFile(args[0])
			if err != nil {
				return err
			}

			err = env.Session.Store().Restore(snap)
			if err != nil {
				return err
			}

			err = saveResults(env, nil)
			if err != nil {
				return err
			}

			env.Printer(cmd).Success("Loaded %d records from %s into %s",
				len(snap.Records), args[0], env.Config.Results.Path)

			return nil
		},
	}
}

func resultsPath(env *Env, args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return env.Config.Results.Path
}

// loadResults restores the results file into the session store. With
// missingOK a file that does not exist leaves the store untouched.
func loadResults(env *Env, missingOK bool) error {
	snap, err := results.LoadFile(env.Config.Results.Path)
	if err != nil {
		if missingOK && errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}

	return env.Session.Store().Restore(snap)
}

// saveResults writes the session store to the results file. p may be nil.
func saveResults(env *Env, p *terminal.Printer) error {
	path := env.Config.Results.Path

	err := results.SaveFile(path, env.Session.Store().Snapshot())
	if err != nil {
		return err
	}

	env.Logger().Debug("results saved", "path", path, "records", env.Session.Store().Len())

	if p != nil {
		p.Success("Results saved to %s", path)
	}

	return nil
}
