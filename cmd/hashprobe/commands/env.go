// Package commands implements the hashprobe CLI commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hashprobe/pkg/collision"
	"github.com/Sumatoshi-tech/hashprobe/pkg/config"
	"github.com/Sumatoshi-tech/hashprobe/pkg/observability"
	"github.com/Sumatoshi-tech/hashprobe/pkg/session"
	"github.com/Sumatoshi-tech/hashprobe/pkg/terminal"
	"github.com/Sumatoshi-tech/hashprobe/pkg/version"
)

// annotationSkipSetup marks commands that run without config or telemetry.
const annotationSkipSetup = "hashprobe/skip-setup"

// Env is the state shared by every command of one invocation. Global flags
// are bound to its exported fields; the rest is filled by Setup.
type Env struct {
	ConfigPath  string
	ResultsPath string
	Verbose     bool
	Quiet       bool
	NoColor     bool
	LogJSON     bool

	// Set by the mcp command before Setup runs.
	metricsAddr string
	debug       bool

	Config    *config.Config
	Providers observability.Providers
	Metrics   *observability.SearchMetrics
	Session   *session.Session
}

// NewEnv returns an Env with nothing loaded.
func NewEnv() *Env {
	return &Env{}
}

// Logger returns the configured logger, or the slog default before Setup.
func (e *Env) Logger() *slog.Logger {
	if e.Providers.Logger != nil {
		return e.Providers.Logger
	}

	return slog.Default()
}

// Setup loads configuration, applies flag overrides, initializes telemetry
// and opens a session.
func (e *Env) Setup(cmd *cobra.Command, mode observability.AppMode) error {
	cfg, err := config.LoadConfig(e.ConfigPath)
	if err != nil {
		return err
	}

	e.applyOverrides(cfg)

	obsCfg := cfg.Observability(mode, version.Version)
	if mode == observability.ModeMCP {
		obsCfg.LogJSON = true
	}

	if e.debug {
		obsCfg.LogLevel = slog.LevelDebug
		obsCfg.DebugTrace = true
	}

	providers, err := observability.Init(obsCfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewSearchMetrics(providers.Meter)
	if err != nil {
		return err
	}

	e.Config = cfg
	e.Providers = providers
	e.Metrics = metrics
	e.Session = session.New(cfg.Session(),
		session.WithLogger(providers.Logger),
		session.WithMetrics(metrics),
	)

	return nil
}

func (e *Env) applyOverrides(cfg *config.Config) {
	if e.ResultsPath != "" {
		cfg.Results.Path = e.ResultsPath
	}

	if e.LogJSON {
		cfg.Logging.JSON = true
	}

	switch {
	case e.Verbose:
		cfg.Logging.Level = "debug"
	case e.Quiet:
		cfg.Logging.Level = "error"
	}

	if e.metricsAddr != "" {
		cfg.Telemetry.MetricsAddr = e.metricsAddr
	}
}

// Teardown flushes telemetry. It is safe to call when Setup never ran.
func (e *Env) Teardown(ctx context.Context) {
	if e.Providers.Shutdown == nil {
		return
	}

	err := e.Providers.Shutdown(ctx)
	if err != nil {
		e.Logger().Warn("observability shutdown failed", "error", err)
	}
}

// Printer returns a printer on the command's stdout.
func (e *Env) Printer(cmd *cobra.Command) *terminal.Printer {
	cfg := terminal.NewConfig()
	if e.NoColor {
		cfg.NoColor = true
	}

	return terminal.NewPrinter(cmd.OutOrStdout(), cfg)
}

// NewSource returns the random source for a collision search. A zero seed
// draws one from the clock.
func NewSource(seed uint64) collision.RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return collision.NewSeededSource(seed)
}

func modeFor(cmd *cobra.Command) observability.AppMode {
	switch cmd.Name() {
	case "interactive":
		return observability.ModeInteractive
	case "mcp":
		return observability.ModeMCP
	default:
		return observability.ModeCLI
	}
}

func skipsSetup(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationSkipSetup] == "true"
}
