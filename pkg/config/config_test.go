package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hashprobe/pkg/config"
	"github.com/Sumatoshi-tech/hashprobe/pkg/observability"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hashprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, uint64(1_000_000), cfg.Collision.MaxAttempts)
	assert.Equal(t, 1_000_003, cfg.Collision.TableSize)
	assert.Equal(t, 5, cfg.Reverse.MaxLength)
	assert.Equal(t, 100, cfg.Results.Capacity)
	assert.Equal(t, "hash_results.txt", cfg.Results.Path)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
collision:
  max_attempts: 5000
  table_size: 101
  memory_budget: "1MiB"
  seed: 42
  delay: "10ms"
reverse:
  max_length: 3
results:
  capacity: 10
  path: "out.json.lz4"
logging:
  level: debug
  json: true
telemetry:
  otlp_endpoint: "localhost:4317"
  otlp_headers: "x-token=abc"
  metrics_addr: ":9464"
  sample_ratio: 0.5
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(5000), cfg.Collision.MaxAttempts)
	assert.Equal(t, 101, cfg.Collision.TableSize)
	assert.Equal(t, uint64(42), cfg.Collision.Seed)
	assert.Equal(t, 10*time.Millisecond, cfg.Collision.Delay)
	assert.Equal(t, 3, cfg.Reverse.MaxLength)
	assert.Equal(t, 10, cfg.Results.Capacity)
	assert.Equal(t, "out.json.lz4", cfg.Results.Path)

	budget, err := cfg.Collision.MemoryBudgetBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<20), budget)

	sess := cfg.Session()
	assert.Equal(t, 101, sess.TableSize)
	assert.Equal(t, uint64(1<<20), sess.MemoryBudget)
	assert.Equal(t, 10, sess.Capacity)
	assert.Equal(t, 3, sess.MaxLength)
	assert.Equal(t, config.DefaultLengthLimit, sess.LengthLimit)

	obs := cfg.Observability(observability.ModeMCP, "v1.2.3")
	assert.Equal(t, observability.ModeMCP, obs.Mode)
	assert.Equal(t, "v1.2.3", obs.ServiceVersion)
	assert.Equal(t, slog.LevelDebug, obs.LogLevel)
	assert.True(t, obs.LogJSON)
	assert.True(t, obs.Prometheus)
	assert.Equal(t, "localhost:4317", obs.OTLPEndpoint)
	assert.Equal(t, map[string]string{"x-token": "abc"}, obs.OTLPHeaders)
	assert.InDelta(t, 0.5, obs.SampleRatio, 1e-9)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("HASHPROBE_COLLISION_MAX_ATTEMPTS", "77")
	t.Setenv("HASHPROBE_REVERSE_MAX_LENGTH", "2")
	t.Setenv("HASHPROBE_RESULTS_PATH", "/tmp/env.yaml")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, uint64(77), cfg.Collision.MaxAttempts)
	assert.Equal(t, 2, cfg.Reverse.MaxLength)
	assert.Equal(t, "/tmp/env.yaml", cfg.Results.Path)
}

func TestObservability_OTLPHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "x-token=abc", want: map[string]string{"x-token": "abc"}},
		{name: "multiple", raw: "a=1,b=2", want: map[string]string{"a": "1", "b": "2"}},
		{name: "spaces", raw: " a = 1 , b = 2 ", want: map[string]string{"a": "1", "b": "2"}},
		{name: "no_equals", raw: "garbage", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.LoadConfig(writeConfig(t, "telemetry:\n  otlp_headers: \""+tt.raw+"\"\n"))
			require.NoError(t, err)

			assert.Equal(t, tt.want, cfg.Observability(observability.ModeCLI, "").OTLPHeaders)
		})
	}
}

func TestLoadConfig_UnlimitedLength(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, "reverse:\n  max_length: 10\n  length_limit: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Reverse.MaxLength)
	assert.Zero(t, cfg.Session().LengthLimit)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "table_size", content: "collision:\n  table_size: 0\n", wantErr: config.ErrInvalidTableSize},
		{name: "budget", content: "collision:\n  memory_budget: \"lots\"\n", wantErr: config.ErrInvalidMemoryBudget},
		{name: "delay", content: "collision:\n  delay: \"-1s\"\n", wantErr: config.ErrInvalidDelay},
		{name: "max_length_zero", content: "reverse:\n  max_length: 0\n", wantErr: config.ErrInvalidMaxLength},
		{name: "max_length_high", content: "reverse:\n  max_length: 9\n", wantErr: config.ErrInvalidMaxLength},
		{name: "max_length_over_limit", content: "reverse:\n  max_length: 4\n  length_limit: 3\n", wantErr: config.ErrInvalidMaxLength},
		{name: "length_limit_negative", content: "reverse:\n  length_limit: -1\n", wantErr: config.ErrInvalidMaxLength},
		{name: "table_size_huge", content: "collision:\n  table_size: 4294967296\n", wantErr: config.ErrInvalidTableSize},
		{name: "capacity", content: "results:\n  capacity: -1\n", wantErr: config.ErrInvalidCapacity},
		{name: "log_level", content: "logging:\n  level: loud\n", wantErr: config.ErrInvalidLogLevel},
		{name: "sample_ratio", content: "telemetry:\n  sample_ratio: 2\n", wantErr: config.ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMemoryBudgetBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want uint64
	}{
		{in: "", want: 0},
		{in: "0", want: 0},
		{in: "64MB", want: 64_000_000},
		{in: "2GiB", want: 2 << 30},
		{in: "512", want: 512},
	}

	for _, tt := range tests {
		got, err := config.CollisionConfig{MemoryBudget: tt.in}.MemoryBudgetBytes()
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
