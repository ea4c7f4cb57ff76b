package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hashprobe/pkg/mcp"
	"github.com/Sumatoshi-tech/hashprobe/pkg/observability"
	"github.com/Sumatoshi-tech/hashprobe/pkg/version"
)

const metricsReadHeaderTimeout = 5 * time.Second

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes hashprobe operations as tools that AI agents can
discover and invoke:
  - hash_compute: Hash a string, optionally with every mixing step
  - hash_compare: Hash two strings and compare the results
  - hash_find_collision: Randomized collision search
  - hash_reverse_lookup: Brute-force preimage search
  - hash_results: Recorded collisions and statistics

With --metrics-addr a Prometheus scrape endpoint is served on /metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			env.Logger().Info("starting MCP server", "version", version.Version)

			toolMetrics, metricsErr := observability.NewToolMetrics(env.Providers.Meter)
			if metricsErr != nil {
				return metricsErr
			}

			stopMetrics, err := serveMetrics(env)
			if err != nil {
				return err
			}
			defer stopMetrics()

			deps := mcp.ServerDeps{
				Session:         env.Session,
				Logger:          env.Logger(),
				Metrics:         toolMetrics,
				Tracer:          env.Providers.Tracer,
				Version:         version.Version,
				DefaultAttempts: env.Config.Collision.MaxAttempts,
				NewSource:       NewSource,
			}

			srv := mcp.NewServer(deps)

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&env.debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&env.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")

	return cmd
}

// serveMetrics starts the Prometheus endpoint when one is configured and
// returns the function stopping it.
func serveMetrics(env *Env) (func(), error) {
	addr := env.Config.Telemetry.MetricsAddr
	if addr == "" || env.Providers.MetricsHandler == nil {
		return func() {}, nil
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics: %w", err)
	}

	srv := &http.Server{
		Handler:           observability.MetricsMux(env.Providers.MetricsHandler),
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			env.Logger().Warn("metrics server stopped", "error", serveErr)
		}
	}()

	env.Logger().Info("serving metrics", "addr", listener.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsReadHeaderTimeout)
		defer cancel()

		shutdownErr := srv.Shutdown(ctx)
		if shutdownErr != nil {
			env.Logger().Warn("metrics server shutdown failed", "error", shutdownErr)
		}
	}, nil
}
