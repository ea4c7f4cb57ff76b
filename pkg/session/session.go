// Package session ties the hash, collision search, reverse lookup and result
// store together for one user of the tool.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Sumatoshi-tech/hashprobe/pkg/collision"
	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
	"github.com/Sumatoshi-tech/hashprobe/pkg/observability"
	"github.com/Sumatoshi-tech/hashprobe/pkg/results"
	"github.com/Sumatoshi-tech/hashprobe/pkg/reverse"
)

// MaxInputLen is the longest input accepted for hashing.
const MaxInputLen = 255

// ErrInputTooLong is returned for inputs longer than MaxInputLen bytes.
var ErrInputTooLong = errors.New("session: input too long")

// Config holds the session tunables.
type Config struct {
	// Capacity is the result store limit.
	Capacity int
	// TableSize is the collision table bucket count.
	TableSize int
	// MemoryBudget caps the collision table in bytes. Zero is unlimited.
	MemoryBudget uint64
	// MaxLength is the default reverse lookup length.
	MaxLength int
	// LengthLimit caps the reverse lookup length. Zero is unlimited.
	LengthLimit int
}

// DefaultConfig returns the built-in session settings.
func DefaultConfig() Config {
	return Config{
		Capacity:    results.DefaultCapacity,
		TableSize:   collision.DefaultTableSize,
		MaxLength:   reverse.DefaultMaxLength,
		LengthLimit: reverse.DefaultLengthLimit,
	}
}

// Comparison is the outcome of hashing two inputs.
type Comparison struct {
	HashA uint32
	HashB uint32
	Match bool
}

// Session owns a result store and runs operations against it.
type Session struct {
	cfg     Config
	store   *results.Store
	logger  *slog.Logger
	metrics *observability.SearchMetrics

	// searchMu serializes collision searches.
	searchMu sync.Mutex
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records operations on sm.
func WithMetrics(sm *observability.SearchMetrics) Option {
	return func(s *Session) { s.metrics = sm }
}

// WithStore replaces the session's result store.
func WithStore(st *results.Store) Option {
	return func(s *Session) {
		if st != nil {
			s.store = st
		}
	}
}

// New creates a session with an empty store sized by cfg.Capacity.
func New(cfg Config, opts ...Option) *Session {
	def := DefaultConfig()

	if cfg.TableSize == 0 {
		cfg.TableSize = def.TableSize
	}

	if cfg.MaxLength == 0 {
		cfg.MaxLength = def.MaxLength
	}

	s := &Session{
		cfg:    cfg,
		store:  results.NewStore(cfg.Capacity),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Store returns the session's result store.
func (s *Session) Store() *results.Store {
	return s.store
}

// Config returns the effective session settings.
func (s *Session) Config() Config {
	return s.cfg
}

// ValidateInput rejects inputs longer than MaxInputLen.
func ValidateInput(input []byte) error {
	if len(input) > MaxInputLen {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrInputTooLong, len(input), MaxInputLen)
	}

	return nil
}

// Hash hashes input and counts it.
func (s *Session) Hash(ctx context.Context, input []byte) (uint32, error) {
	return s.HashTraced(ctx, input, nil)
}

// HashTraced hashes input and reports every mixing step to obs.
func (s *Session) HashTraced(ctx context.Context, input []byte, obs mixhash.Observer) (uint32, error) {
	err := ValidateInput(input)
	if err != nil {
		return 0, err
	}

	ctx = observability.WithOperation(ctx, observability.OpHash)
	h := mixhash.Sum32Observed(input, obs)

	s.store.AddHashed(1)
	s.metrics.RecordHashed(ctx, 1)

	return h, nil
}

// Compare hashes both inputs. Only single-hash requests count towards
// TotalStringsHashed, so a comparison leaves the counters untouched.
func (s *Session) Compare(ctx context.Context, a, b []byte) (Comparison, error) {
	err := errors.Join(ValidateInput(a), ValidateInput(b))
	if err != nil {
		return Comparison{}, err
	}

	ha, hb := mixhash.Sum32(a), mixhash.Sum32(b)

	s.logger.DebugContext(observability.WithOperation(ctx, observability.OpCompare), "strings compared",
		"hash_a", ha, "hash_b", hb, "match", ha == hb)

	return Comparison{HashA: ha, HashB: hb, Match: ha == hb}, nil
}

// FindCollision runs one collision search. A found collision is counted and
// recorded. When the store is full the outcome is still returned, together
// with an error wrapping results.ErrCapacityExceeded.
func (s *Session) FindCollision(
	ctx context.Context, maxAttempts uint64, src collision.RandomSource, opts ...collision.Option,
) (collision.Outcome, error) {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()

	ctx = observability.WithOperation(ctx, observability.OpCollide)

	base := []collision.Option{
		collision.WithTableSize(s.cfg.TableSize),
		collision.WithMemoryBudget(s.cfg.MemoryBudget),
		collision.WithLogger(s.logger),
		collision.WithMetrics(s.metrics),
	}

	out, err := collision.NewFinder(append(base, opts...)...).Find(ctx, maxAttempts, src)
	if err != nil {
		return out, fmt.Errorf("find collision: %w", err)
	}

	if !out.Found() {
		return out, nil
	}

	s.store.AddCollision()

	err = s.store.Append(results.Record{
		Input:        out.Input,
		Hash:         out.Hash,
		CollidesWith: out.CollidesWith,
		Attempts:     out.Attempt,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "collision not recorded", "error", err)

		return out, fmt.Errorf("record collision: %w", err)
	}

	s.logger.InfoContext(ctx, "collision found",
		"attempt", out.Attempt, "hash", out.Hash)

	return out, nil
}

// ReverseLookup searches for a preimage of target. A non-positive maxLength
// uses the session default.
func (s *Session) ReverseLookup(
	ctx context.Context, target uint32, maxLength int, opts ...reverse.Option,
) (reverse.Result, error) {
	if maxLength <= 0 {
		maxLength = s.cfg.MaxLength
	}

	ctx = observability.WithOperation(ctx, observability.OpReverse)

	base := []reverse.Option{
		reverse.WithLengthLimit(s.cfg.LengthLimit),
		reverse.WithLogger(s.logger),
		reverse.WithMetrics(s.metrics),
	}

	res, err := reverse.Lookup(ctx, target, maxLength, append(base, opts...)...)
	if err != nil {
		return res, fmt.Errorf("reverse lookup: %w", err)
	}

	return res, nil
}

// StripLineTerminator removes trailing carriage returns and newlines.
func StripLineTerminator(s string) string {
	return strings.TrimRight(s, "\r\n")
}
