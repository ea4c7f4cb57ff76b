// Package observability wires OpenTelemetry traces and metrics and the slog
// logger shared by the hashprobe CLI, the interactive menu and the MCP server.
package observability

import (
	"log/slog"
	"time"
)

// AppMode names the surface a process was started as. It is stamped on
// every log record and on the telemetry resource.
type AppMode string

// Surfaces.
const (
	ModeCLI         AppMode = "cli"
	ModeInteractive AppMode = "interactive"
	ModeMCP         AppMode = "mcp"
)

const (
	serviceName            = "hashprobe"
	defaultShutdownTimeout = 5 * time.Second
)

// Config selects exporters, sampling and log format.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLPEndpoint is a gRPC collector address such as "localhost:4317".
	// Without one, spans and metrics stay in process.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// Prometheus exposes metrics through Providers.MetricsHandler.
	Prometheus bool

	// DebugTrace forces sampling and reports attributes the redactor drops.
	DebugTrace bool
	// SampleRatio above zero samples that share of root spans. At zero the
	// OTEL_TRACES_SAMPLER environment decides.
	SampleRatio float64

	LogLevel slog.Level
	LogJSON  bool

	// ShutdownTimeout bounds the final flush. Zero means five seconds.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a config that logs text at info and exports nothing.
func DefaultConfig() Config {
	return Config{
		ServiceName:     serviceName,
		Mode:            ModeCLI,
		LogLevel:        slog.LevelInfo,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return defaultShutdownTimeout
	}

	return c.ShutdownTimeout
}

// ParseLevel turns "debug", "info", "warn" or "error" (any case) into a slog
// level. Anything else is info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if level.UnmarshalText([]byte(name)) != nil {
		return slog.LevelInfo
	}

	return level
}
