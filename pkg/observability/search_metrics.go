package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/hashprobe/pkg/safeconv"
)

const (
	metricCollisionAttempts = "hashprobe.collision.attempts.total"
	metricCollisionsFound   = "hashprobe.collision.found.total"
	metricReverseCandidates = "hashprobe.reverse.candidates.total"
	metricSearchDuration    = "hashprobe.search.duration.seconds"
	metricStringsHashed     = "hashprobe.hashed.total"

	attrSearch  = "search"
	attrOutcome = "outcome"

	// SearchCollision labels collision searches.
	SearchCollision = "collision"
	// SearchReverse labels reverse lookups.
	SearchReverse = "reverse"
)

// SearchMetrics holds OTel instruments for the collision and reverse searches.
type SearchMetrics struct {
	collisionAttempts metric.Int64Counter
	collisionsFound   metric.Int64Counter
	reverseCandidates metric.Int64Counter
	searchDuration    metric.Float64Histogram
	stringsHashed     metric.Int64Counter
}

// NewSearchMetrics creates search metric instruments from the given meter.
func NewSearchMetrics(mt metric.Meter) (*SearchMetrics, error) {
	var (
		sm  SearchMetrics
		err error
	)

	counters := []struct {
		dst              *metric.Int64Counter
		name, desc, unit string
	}{
		{&sm.collisionAttempts, metricCollisionAttempts, "Random strings generated by collision searches", "{attempt}"},
		{&sm.collisionsFound, metricCollisionsFound, "Collisions confirmed by collision searches", "{collision}"},
		{&sm.reverseCandidates, metricReverseCandidates, "Candidate strings hashed by reverse lookups", "{candidate}"},
		{&sm.stringsHashed, metricStringsHashed, "Strings hashed on explicit request", "{string}"},
	}

	for _, c := range counters {
		*c.dst, err = newCounter(mt, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
	}

	sm.searchDuration, err = newDurationHistogram(mt, metricSearchDuration, "Search duration in seconds")
	if err != nil {
		return nil, err
	}

	return &sm, nil
}

// RecordCollisionSearch records one finished collision search.
// Safe to call on a nil receiver (no-op).
func (sm *SearchMetrics) RecordCollisionSearch(ctx context.Context, attempts uint64, found bool, duration time.Duration) {
	if sm == nil {
		return
	}

	outcome := "exhausted"
	if found {
		outcome = "found"

		sm.collisionsFound.Add(ctx, 1)
	}

	sm.collisionAttempts.Add(ctx, safeconv.ClampUint64ToInt64(attempts))
	sm.searchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(attrSearch, SearchCollision),
		attribute.String(attrOutcome, outcome),
	))
}

// RecordReverseLookup records one finished reverse lookup.
// Safe to call on a nil receiver (no-op).
func (sm *SearchMetrics) RecordReverseLookup(ctx context.Context, candidates uint64, found bool, duration time.Duration) {
	if sm == nil {
		return
	}

	outcome := "not_found"
	if found {
		outcome = "found"
	}

	sm.reverseCandidates.Add(ctx, safeconv.ClampUint64ToInt64(candidates))
	sm.searchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(attrSearch, SearchReverse),
		attribute.String(attrOutcome, outcome),
	))
}

// RecordHashed counts strings hashed on explicit request.
// Safe to call on a nil receiver (no-op).
func (sm *SearchMetrics) RecordHashed(ctx context.Context, n int) {
	if sm == nil {
		return
	}

	sm.stringsHashed.Add(ctx, int64(n))
}
