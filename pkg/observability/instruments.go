package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// durationBuckets span single hashes (well under 1ms) up to long reverse
// lookups that run for minutes.
var durationBuckets = []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 900}

func newCounter(mt metric.Meter, name, description, unit string) (metric.Int64Counter, error) {
	c, err := mt.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}

	return c, nil
}

func newDurationHistogram(mt metric.Meter, name, description string) (metric.Float64Histogram, error) {
	h, err := mt.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}

	return h, nil
}
