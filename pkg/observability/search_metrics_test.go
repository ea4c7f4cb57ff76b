package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/hashprobe/pkg/observability"
)

func setupSearchMetrics(t *testing.T) (*observability.SearchMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	sm, err := observability.NewSearchMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return sm, reader
}

func sumValue(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestSearchMetrics_CollisionSearch(t *testing.T) {
	t.Parallel()

	sm, reader := setupSearchMetrics(t)
	ctx := context.Background()

	sm.RecordCollisionSearch(ctx, 100, false, time.Millisecond)
	sm.RecordCollisionSearch(ctx, 50, true, time.Millisecond)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(150), sumValue(t, findMetric(rm, "hashprobe.collision.attempts.total")))
	assert.Equal(t, int64(1), sumValue(t, findMetric(rm, "hashprobe.collision.found.total")))
	assert.NotNil(t, findMetric(rm, "hashprobe.search.duration.seconds"))
}

func TestSearchMetrics_ReverseLookupAndHashed(t *testing.T) {
	t.Parallel()

	sm, reader := setupSearchMetrics(t)
	ctx := context.Background()

	sm.RecordReverseLookup(ctx, 3906, false, time.Millisecond)
	sm.RecordHashed(ctx, 2)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(3906), sumValue(t, findMetric(rm, "hashprobe.reverse.candidates.total")))
	assert.Equal(t, int64(2), sumValue(t, findMetric(rm, "hashprobe.hashed.total")))
}

func TestSearchMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var sm *observability.SearchMetrics

	assert.NotPanics(t, func() {
		sm.RecordCollisionSearch(context.Background(), 1, true, time.Second)
		sm.RecordReverseLookup(context.Background(), 1, true, time.Second)
		sm.RecordHashed(context.Background(), 1)
	})
}
