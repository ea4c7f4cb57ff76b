package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hashprobe/pkg/version"
)

// Execute runs the command tree and flushes telemetry afterwards, whether
// or not the command failed.
func Execute(ctx context.Context) error {
	env := NewEnv()
	defer env.Teardown(context.WithoutCancel(ctx))

	return NewRootCommand(env).ExecuteContext(ctx)
}

// NewRootCommand builds the hashprobe command tree around env.
func NewRootCommand(env *Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hashprobe",
		Short: "hashprobe - explore a 32-bit mixing hash",
		Long: `hashprobe hashes strings with a FNV/Murmur style 32-bit mixing function
and probes its weaknesses.

Commands:
  hash         Hash a string, optionally tracing every mixing step
  compare      Hash two strings and compare the results
  collide      Search for two random strings landing in the same bucket
  reverse      Brute-force a string producing a given hash
  interactive  Menu-driven session
  results      Show, convert and inspect saved results
  mcp          Start the MCP server on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsSetup(cmd) {
				return nil
			}

			return env.Setup(cmd, modeFor(cmd))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&env.ConfigPath, "config", "", "config file (default ./hashprobe.yaml or ~/.config/hashprobe/hashprobe.yaml)")
	flags.StringVar(&env.ResultsPath, "results", "", "results file; the extension selects the format (.txt, .json, .yaml, optional .lz4)")
	flags.BoolVarP(&env.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&env.Quiet, "quiet", "q", false, "suppress output")
	flags.BoolVar(&env.NoColor, "no-color", false, "disable colored output")
	flags.BoolVar(&env.LogJSON, "log-json", false, "write logs as JSON")

	rootCmd.AddCommand(NewHashCommand(env))
	rootCmd.AddCommand(NewCompareCommand(env))
	rootCmd.AddCommand(NewCollideCommand(env))
	rootCmd.AddCommand(NewReverseCommand(env))
	rootCmd.AddCommand(NewInteractiveCommand(env))
	rootCmd.AddCommand(NewResultsCommand(env))
	rootCmd.AddCommand(NewMCPCommand(env))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{annotationSkipSetup: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hashprobe %s\n", version.String())
		},
	}
}
