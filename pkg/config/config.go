// Package config provides configuration loading and validation for hashprobe.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/hashprobe/pkg/collision"
	"github.com/Sumatoshi-tech/hashprobe/pkg/observability"
	"github.com/Sumatoshi-tech/hashprobe/pkg/session"
)

// Sentinel validation errors.
var (
	ErrInvalidTableSize    = errors.New("collision table size out of range")
	ErrInvalidMemoryBudget = errors.New("invalid collision memory budget")
	ErrInvalidDelay        = errors.New("collision delay must not be negative")
	ErrInvalidMaxLength    = errors.New("reverse max length out of range")
	ErrInvalidCapacity     = errors.New("results capacity must be positive")
	ErrInvalidLogLevel     = errors.New("unknown log level")
	ErrInvalidSampleRatio  = errors.New("trace sample ratio must be within [0, 1]")
)

const (
	envPrefix      = "HASHPROBE"
	configName     = "hashprobe"
	userConfigPath = "$HOME/.config/hashprobe"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds all configuration for hashprobe.
type Config struct {
	Collision CollisionConfig `mapstructure:"collision"`
	Reverse   ReverseConfig   `mapstructure:"reverse"`
	Results   ResultsConfig   `mapstructure:"results"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// CollisionConfig holds collision search settings.
type CollisionConfig struct {
	MemoryBudget  string        `mapstructure:"memory_budget"`
	MaxAttempts   uint64        `mapstructure:"max_attempts"`
	Seed          uint64        `mapstructure:"seed"`
	ProgressEvery uint64        `mapstructure:"progress_every"`
	Delay         time.Duration `mapstructure:"delay"`
	TableSize     int           `mapstructure:"table_size"`
}

// MemoryBudgetBytes parses MemoryBudget. Empty or "0" means unlimited.
func (c CollisionConfig) MemoryBudgetBytes() (uint64, error) {
	if c.MemoryBudget == "" || c.MemoryBudget == "0" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(c.MemoryBudget)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMemoryBudget, c.MemoryBudget, err)
	}

	return n, nil
}

// ReverseConfig holds reverse lookup settings.
type ReverseConfig struct {
	MaxLength int `mapstructure:"max_length"`
	// LengthLimit caps max_length for every request. Zero disables the cap.
	LengthLimit int `mapstructure:"length_limit"`
}

// ResultsConfig holds result store settings.
type ResultsConfig struct {
	Path     string `mapstructure:"path"`
	Capacity int    `mapstructure:"capacity"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	MetricsAddr  string  `mapstructure:"metrics_addr"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// LoadConfig loads configuration from file and environment variables. With
// an empty configPath, hashprobe.yaml is looked up in the working directory
// and in $HOME/.config/hashprobe; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath(userConfigPath)
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration with every default applied.
func Default() *Config {
	return &Config{
		Collision: CollisionConfig{
			MemoryBudget:  DefaultMemoryBudget,
			MaxAttempts:   DefaultMaxAttempts,
			Seed:          DefaultSeed,
			ProgressEvery: DefaultProgressEvery,
			Delay:         DefaultDelay,
			TableSize:     DefaultTableSize,
		},
		Reverse: ReverseConfig{MaxLength: DefaultMaxLength, LengthLimit: DefaultLengthLimit},
		Results: ResultsConfig{Path: DefaultResultsPath, Capacity: DefaultCapacity},
		Logging: LoggingConfig{Level: DefaultLogLevel, JSON: DefaultLogJSON},
		Telemetry: TelemetryConfig{
			MetricsAddr: DefaultMetricsAddr,
			SampleRatio: DefaultSampleRatio,
		},
	}
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Collision defaults.
	viperCfg.SetDefault("collision.max_attempts", DefaultMaxAttempts)
	viperCfg.SetDefault("collision.table_size", DefaultTableSize)
	viperCfg.SetDefault("collision.memory_budget", DefaultMemoryBudget)
	viperCfg.SetDefault("collision.seed", DefaultSeed)
	viperCfg.SetDefault("collision.progress_every", DefaultProgressEvery)
	viperCfg.SetDefault("collision.delay", DefaultDelay)

	// Reverse defaults.
	viperCfg.SetDefault("reverse.max_length", DefaultMaxLength)
	viperCfg.SetDefault("reverse.length_limit", DefaultLengthLimit)

	// Results defaults.
	viperCfg.SetDefault("results.capacity", DefaultCapacity)
	viperCfg.SetDefault("results.path", DefaultResultsPath)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.metrics_addr", DefaultMetricsAddr)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Collision.TableSize <= 0 || uint64(config.Collision.TableSize) > collision.MaxTableSize {
		return fmt.Errorf("%w: %d", ErrInvalidTableSize, config.Collision.TableSize)
	}

	_, budgetErr := config.Collision.MemoryBudgetBytes()
	if budgetErr != nil {
		return budgetErr
	}

	if config.Collision.Delay < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDelay, config.Collision.Delay)
	}

	if config.Reverse.LengthLimit < 0 {
		return fmt.Errorf("%w: length_limit %d is negative", ErrInvalidMaxLength, config.Reverse.LengthLimit)
	}

	limit := config.Reverse.LengthLimit
	if config.Reverse.MaxLength <= 0 || (limit > 0 && config.Reverse.MaxLength > limit) {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidMaxLength, config.Reverse.MaxLength, limit)
	}

	if config.Results.Capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, config.Results.Capacity)
	}

	level := strings.ToLower(config.Logging.Level)
	if !slices.Contains(validLogLevels, level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	return nil
}

// Session maps the configuration onto session settings. The memory budget
// is assumed valid, as checked by LoadConfig.
func (c *Config) Session() session.Config {
	budget, err := c.Collision.MemoryBudgetBytes()
	if err != nil {
		budget = 0
	}

	return session.Config{
		Capacity:     c.Results.Capacity,
		TableSize:    c.Collision.TableSize,
		MemoryBudget: budget,
		MaxLength:    c.Reverse.MaxLength,
		LengthLimit:  c.Reverse.LengthLimit,
	}
}

// Observability maps the logging and telemetry sections onto an
// observability config for the given mode.
func (c *Config) Observability(mode observability.AppMode, version string) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.Mode = mode
	obsCfg.ServiceVersion = version
	obsCfg.LogLevel = observability.ParseLevel(c.Logging.Level)
	obsCfg.LogJSON = c.Logging.JSON
	obsCfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = parseHeaders(c.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = c.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = c.Telemetry.SampleRatio
	obsCfg.Prometheus = c.Telemetry.MetricsAddr != ""

	return obsCfg
}

// parseHeaders reads "key=value,key=value" OTLP headers. Pairs without "="
// are skipped, and nil is returned when nothing remains.
func parseHeaders(raw string) map[string]string {
	var headers map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		if headers == nil {
			headers = make(map[string]string)
		}

		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return headers
}
