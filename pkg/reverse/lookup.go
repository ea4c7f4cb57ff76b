// Package reverse brute-forces a preimage of a hash value by enumerating
// every string over an alphabet, shortest first.
package reverse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/hashprobe/pkg/enumerate"
	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
	"github.com/Sumatoshi-tech/hashprobe/pkg/observability"
	"github.com/Sumatoshi-tech/hashprobe/pkg/safeconv"
)

const (
	// DefaultMaxLength is the longest candidate tried when no length is configured.
	DefaultMaxLength = 5

	// DefaultLengthLimit is the usual cap on maxLength. 62^8 candidates
	// already take hours.
	DefaultLengthLimit = 8

	checkInterval = 4096

	tracerName = "hashprobe/reverse"
)

// Alphabet is the default candidate symbol set, in enumeration order.
var Alphabet = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// ErrInvalidLength is returned for a non-positive maxLength, or one above the
// limit set by WithLengthLimit.
var ErrInvalidLength = errors.New("reverse: invalid max length")

// Status is the terminal state of a lookup.
type Status uint8

const (
	// StatusNotFound means every candidate up to maxLength was tried.
	StatusNotFound Status = iota
	// StatusFound means a candidate hashed to the target.
	StatusFound
)

// String returns the status name.
func (s Status) String() string {
	if s == StatusFound {
		return "found"
	}

	return "not found"
}

// Result describes how a lookup ended.
type Result struct {
	Status Status
	Input  []byte
	// Candidates is the number of strings hashed, including the match.
	Candidates uint64
	Duration   time.Duration
}

// Found reports whether a preimage was found.
func (r Result) Found() bool {
	return r.Status == StatusFound
}

// Candidate is passed to an Observer for every string hashed. Value is only
// valid during the call.
type Candidate struct {
	Index uint64
	Value []byte
	Hash  uint32
}

// Observer receives every candidate.
type Observer interface {
	ObserveCandidate(c Candidate)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c Candidate)

// ObserveCandidate implements Observer.
func (f ObserverFunc) ObserveCandidate(c Candidate) { f(c) }

type lookup struct {
	alphabet []byte
	observer Observer
	hasher   func([]byte) uint32
	limit    int
	logger   *slog.Logger
	metrics  *observability.SearchMetrics
}

// Option configures a lookup.
type Option func(*lookup)

// WithAlphabet replaces the candidate symbol set.
func WithAlphabet(alphabet []byte) Option {
	return func(l *lookup) { l.alphabet = alphabet }
}

// WithObserver registers a per-candidate observer.
func WithObserver(obs Observer) Option {
	return func(l *lookup) { l.observer = obs }
}

// WithHasher replaces the hash function.
func WithHasher(h func([]byte) uint32) Option {
	return func(l *lookup) {
		if h != nil {
			l.hasher = h
		}
	}
}

// WithLengthLimit rejects a maxLength above n. Zero or less means no limit.
func WithLengthLimit(n int) Option {
	return func(l *lookup) { l.limit = n }
}

// WithLogger sets the logger for lookup summaries.
func WithLogger(lg *slog.Logger) Option {
	return func(l *lookup) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// WithMetrics records candidates and outcomes on sm.
func WithMetrics(sm *observability.SearchMetrics) Option {
	return func(l *lookup) { l.metrics = sm }
}

// Lookup hashes every string of length 1 through maxLength and returns the
// first whose hash equals target. Within a length, position 0 varies fastest.
// An exhausted search is StatusNotFound with a nil error.
func Lookup(ctx context.Context, target uint32, maxLength int, opts ...Option) (Result, error) {
	l := &lookup{
		alphabet: Alphabet,
		hasher:   mixhash.Sum32,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	if maxLength <= 0 {
		return Result{}, fmt.Errorf("%w: %d must be positive", ErrInvalidLength, maxLength)
	}

	if l.limit > 0 && maxLength > l.limit {
		return Result{}, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidLength, maxLength, l.limit)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "reverse.lookup", trace.WithAttributes(
		attribute.Int64("reverse.target", int64(target)),
		attribute.Int("reverse.max_length", maxLength),
	))
	defer span.End()

	start := time.Now()

	res, err := l.run(ctx, target, maxLength)
	res.Duration = time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return res, err
	}

	span.SetAttributes(
		attribute.String("reverse.outcome", res.Status.String()),
		attribute.Int64("reverse.candidates", safeconv.ClampUint64ToInt64(res.Candidates)),
	)

	l.metrics.RecordReverseLookup(ctx, res.Candidates, res.Found(), res.Duration)
	l.logger.DebugContext(ctx, "reverse lookup finished",
		"outcome", res.Status.String(),
		"candidates", res.Candidates,
		"duration", res.Duration)

	return res, nil
}

func (l *lookup) run(ctx context.Context, target uint32, maxLength int) (Result, error) {
	var tried uint64

	for length := 1; length <= maxLength; length++ {
		odo, err := enumerate.New(l.alphabet, length)
		if err != nil {
			return Result{}, fmt.Errorf("reverse lookup: %w", err)
		}

		for odo.Next() {
			if tried%checkInterval == 0 {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return Result{Candidates: tried},
						fmt.Errorf("reverse lookup interrupted after %d candidates: %w", tried, ctxErr)
				}
			}

			value := odo.Value()
			h := l.hasher(value)
			tried++

			if l.observer != nil {
				l.observer.ObserveCandidate(Candidate{Index: tried, Value: value, Hash: h})
			}

			if h == target {
				return Result{
					Status:     StatusFound,
					Input:      append([]byte(nil), value...),
					Candidates: tried,
				}, nil
			}
		}
	}

	return Result{Status: StatusNotFound, Candidates: tried}, nil
}

// SearchSpace returns the number of candidates an exhausted search over
// alphabetSize symbols and lengths 1..maxLength hashes. ok is false on overflow.
func SearchSpace(alphabetSize, maxLength int) (total uint64, ok bool) {
	for length := 1; length <= maxLength; length++ {
		n, fits := enumerate.Count(alphabetSize, length)
		if !fits || total+n < total {
			return 0, false
		}

		total += n
	}

	return total, true
}
