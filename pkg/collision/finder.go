// Package collision searches for two distinct strings sharing a bucket in a
// fixed-size hash table, using randomly generated candidates.
package collision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
	"github.com/Sumatoshi-tech/hashprobe/pkg/observability"
	"github.com/Sumatoshi-tech/hashprobe/pkg/safeconv"
)

// MaxCandidateLen is the longest generated candidate.
const MaxCandidateLen = 12

// Alphabet is the symbol set candidates are drawn from.
var Alphabet = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()")

// ctxCheckInterval is how many attempts run between context checks.
const ctxCheckInterval = 1024

const tracerName = "hashprobe/collision"

// Status is the terminal state of a search.
type Status uint8

const (
	// StatusExhausted means the attempt budget ran out without a collision.
	StatusExhausted Status = iota
	// StatusFound means two distinct strings landed in the same bucket.
	StatusFound
)

// String returns the status name.
func (s Status) String() string {
	if s == StatusFound {
		return "found"
	}

	return "exhausted"
}

// Outcome describes how a search ended.
type Outcome struct {
	Status       Status
	Input        []byte
	CollidesWith []byte
	Hash         uint32
	// Attempt is the 0-based index of the colliding attempt.
	Attempt uint64
	// Attempts is the number of candidates generated.
	Attempts uint64
	// Stored is the number of table writes.
	Stored   uint64
	Duration time.Duration
}

// Found reports whether the search confirmed a collision.
func (o Outcome) Found() bool {
	return o.Status == StatusFound
}

// Event is the per-candidate notification passed to an Observer.
type Event struct {
	Index     uint64
	Candidate []byte
	Hash      uint32
	Bucket    int
}

// Observer receives every attempt before the table is checked. Candidate is
// only valid for the duration of the call.
type Observer interface {
	ObserveAttempt(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

// ObserveAttempt implements Observer.
func (f ObserverFunc) ObserveAttempt(ctx context.Context, ev Event) { f(ctx, ev) }

// Finder runs collision searches. A Finder holds no per-search state and is
// safe to reuse.
type Finder struct {
	tableSize int
	budget    uint64
	hasher    func([]byte) uint32
	observer  Observer
	logger    *slog.Logger
	metrics   *observability.SearchMetrics
	tracer    trace.Tracer
}

// Option configures a Finder.
type Option func(*Finder)

// WithTableSize sets the bucket count.
func WithTableSize(n int) Option {
	return func(f *Finder) { f.tableSize = n }
}

// WithMemoryBudget caps the table's memory in bytes. Zero means unlimited.
func WithMemoryBudget(bytes uint64) Option {
	return func(f *Finder) { f.budget = bytes }
}

// WithHasher replaces the hash function.
func WithHasher(h func([]byte) uint32) Option {
	return func(f *Finder) {
		if h != nil {
			f.hasher = h
		}
	}
}

// WithObserver registers a per-attempt observer.
func WithObserver(obs Observer) Option {
	return func(f *Finder) { f.observer = obs }
}

// WithLogger sets the logger for search summaries.
func WithLogger(l *slog.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMetrics records attempts and outcomes on sm.
func WithMetrics(sm *observability.SearchMetrics) Option {
	return func(f *Finder) { f.metrics = sm }
}

// NewFinder returns a Finder with the default table size and hash.
func NewFinder(opts ...Option) *Finder {
	f := &Finder{
		tableSize: DefaultTableSize,
		hasher:    mixhash.Sum32,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// TableSize returns the configured bucket count.
func (f *Finder) TableSize() int {
	return f.tableSize
}

// Find generates up to maxAttempts candidates from src and stops at the first
// bucket collision. Running out of attempts is reported as StatusExhausted
// with a nil error. Errors are ErrAllocation or a wrapped context error.
func (f *Finder) Find(ctx context.Context, maxAttempts uint64, src RandomSource) (Outcome, error) {
	ctx, span := f.tracer.Start(ctx, "collision.find", trace.WithAttributes(
		attribute.Int64("collision.max_attempts", safeconv.ClampUint64ToInt64(maxAttempts)),
		attribute.Int("collision.table_size", f.tableSize),
	))
	defer span.End()

	start := time.Now()

	out, err := f.find(ctx, maxAttempts, src)
	out.Duration = time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		f.logger.WarnContext(ctx, "collision search failed",
			"attempts", out.Attempts, "error", err)

		return out, err
	}

	span.SetAttributes(
		attribute.String("collision.outcome", out.Status.String()),
		attribute.Int64("collision.attempts", safeconv.ClampUint64ToInt64(out.Attempts)),
	)

	f.metrics.RecordCollisionSearch(ctx, out.Attempts, out.Found(), out.Duration)
	f.logger.DebugContext(ctx, "collision search finished",
		"outcome", out.Status.String(),
		"attempts", out.Attempts,
		"stored", out.Stored,
		"duration", out.Duration)

	return out, nil
}

func (f *Finder) find(ctx context.Context, maxAttempts uint64, src RandomSource) (Outcome, error) {
	if maxAttempts == 0 {
		return Outcome{Status: StatusExhausted}, nil
	}

	table, err := NewTable(f.tableSize, f.budget)
	if err != nil {
		return Outcome{}, err
	}

	buf := make([]byte, MaxCandidateLen)

	for attempt := range maxAttempts {
		if attempt%ctxCheckInterval == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Outcome{Attempts: attempt, Stored: table.Stored()},
					fmt.Errorf("collision search interrupted after %d attempts: %w", attempt, ctxErr)
			}
		}

		candidate := generate(src, buf)
		h := f.hasher(candidate)
		idx := table.Index(h)

		if f.observer != nil {
			f.observer.ObserveAttempt(ctx, Event{Index: attempt, Candidate: candidate, Hash: h, Bucket: idx})
		}

		if occupant, hit := table.Occupant(idx, candidate); hit {
			return Outcome{
				Status:       StatusFound,
				Input:        append([]byte(nil), candidate...),
				CollidesWith: occupant,
				Hash:         h,
				Attempt:      attempt,
				Attempts:     attempt + 1,
				Stored:       table.Stored(),
			}, nil
		}

		table.Store(idx, h, candidate)
	}

	return Outcome{Status: StatusExhausted, Attempts: maxAttempts, Stored: table.Stored()}, nil
}

// generate fills buf with one candidate: a length draw followed by one
// symbol draw per position.
func generate(src RandomSource, buf []byte) []byte {
	n := 1 + src.IntN(MaxCandidateLen)
	for i := range n {
		buf[i] = Alphabet[src.IntN(len(Alphabet))]
	}

	return buf[:n]
}
