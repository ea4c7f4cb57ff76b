package session_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hashprobe/pkg/collision"
	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
	"github.com/Sumatoshi-tech/hashprobe/pkg/observability"
	"github.com/Sumatoshi-tech/hashprobe/pkg/results"
	"github.com/Sumatoshi-tech/hashprobe/pkg/reverse"
	"github.com/Sumatoshi-tech/hashprobe/pkg/session"
)

func replay(t *testing.T, candidates ...string) *collision.ReplaySource {
	t.Helper()

	src, err := collision.ReplayFor(candidates...)
	require.NoError(t, err)

	return src
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	s := session.New(session.Config{})
	assert.Equal(t, collision.DefaultTableSize, s.Config().TableSize)
	assert.Equal(t, reverse.DefaultMaxLength, s.Config().MaxLength)
	assert.Equal(t, results.DefaultCapacity, s.Store().Capacity())
}

func TestHash_CountsAndValidates(t *testing.T) {
	t.Parallel()

	s := session.New(session.DefaultConfig())
	ctx := context.Background()

	h, err := s.Hash(ctx, []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, uint32(3158180545), h)

	_, err = s.Hash(ctx, []byte(strings.Repeat("x", session.MaxInputLen)))
	require.NoError(t, err)

	_, err = s.Hash(ctx, []byte(strings.Repeat("x", session.MaxInputLen+1)))
	require.ErrorIs(t, err, session.ErrInputTooLong)

	assert.Equal(t, uint64(2), s.Store().Stats().TotalStringsHashed)
}

func TestHashTraced_ReportsSteps(t *testing.T) {
	t.Parallel()

	s := session.New(session.DefaultConfig())

	var steps int

	obs := mixhash.ObserverFunc(func(mixhash.Step) { steps++ })

	h, err := s.HashTraced(context.Background(), []byte("ab"), obs)
	require.NoError(t, err)
	assert.Equal(t, mixhash.SumString("ab"), h)
	assert.Equal(t, 2+5*2, steps)
}

func TestCompare(t *testing.T) {
	t.Parallel()

	s := session.New(session.DefaultConfig())
	ctx := context.Background()

	cmp, err := s.Compare(ctx, []byte("abc"), []byte("abc"))
	require.NoError(t, err)
	assert.True(t, cmp.Match)

	cmp, err = s.Compare(ctx, []byte("abc"), []byte("abd"))
	require.NoError(t, err)
	assert.False(t, cmp.Match)
	assert.Equal(t, uint32(3158180545), cmp.HashA)
	assert.Equal(t, uint32(620630814), cmp.HashB)

	_, err = s.Compare(ctx, []byte("a"), []byte(strings.Repeat("y", 300)))
	require.ErrorIs(t, err, session.ErrInputTooLong)

	assert.Zero(t, s.Store().Stats().TotalStringsHashed)
}

func TestCompare_DoesNotCountHashedStrings(t *testing.T) {
	t.Parallel()

	s := session.New(session.DefaultConfig())
	ctx := context.Background()

	_, err := s.Compare(ctx, []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.Zero(t, s.Store().Stats().TotalStringsHashed)

	_, err = s.Hash(ctx, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.Store().Stats().TotalStringsHashed)
}

func TestFindCollision_ScriptedDefaultTable(t *testing.T) {
	t.Parallel()

	s := session.New(session.DefaultConfig())

	out, err := s.FindCollision(context.Background(), 2, replay(t, "abc", "abd"))
	require.NoError(t, err)
	assert.Equal(t, collision.StatusExhausted, out.Status)

	st := s.Store().Stats()
	assert.Zero(t, st.TotalCollisionsFound)
	assert.Nil(t, st.FastestCollisionAttempts)
	assert.Zero(t, s.Store().Len())
}

func TestFindCollision_ScriptedSharedBucket(t *testing.T) {
	t.Parallel()

	cfg := session.DefaultConfig()
	cfg.TableSize = 1
	s := session.New(cfg)

	out, err := s.FindCollision(context.Background(), 10, replay(t, "abc", "abd"))
	require.NoError(t, err)
	require.True(t, out.Found())

	all := s.Store().All()
	require.Len(t, all, 1)
	assert.Equal(t, "abd", string(all[0].Input))
	assert.Equal(t, "abc", string(all[0].CollidesWith))
	assert.Equal(t, uint32(620630814), all[0].Hash)
	assert.Equal(t, uint64(1), all[0].Attempts)

	st := s.Store().Stats()
	assert.Equal(t, uint64(1), st.TotalCollisionsFound)
	require.NotNil(t, st.FastestCollisionAttempts)
	assert.Equal(t, uint64(1), *st.FastestCollisionAttempts)
}

func TestSession_LogsCarryOperation(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewLogHandler(inner, observability.DefaultConfig()))

	cfg := session.DefaultConfig()
	cfg.TableSize = 1
	s := session.New(cfg, session.WithLogger(logger))

	_, err := s.FindCollision(context.Background(), 10, replay(t, "abc", "abd"))
	require.NoError(t, err)

	_, err = s.Compare(context.Background(), []byte("a"), []byte("b"))
	require.NoError(t, err)

	out := buf.String()
	assert.Regexp(t, `"msg":"collision found".*"op":"collide"`, out)
	assert.Regexp(t, `"msg":"strings compared".*"op":"compare"`, out)
}

func TestFindCollision_FullStore(t *testing.T) {
	t.Parallel()

	cfg := session.DefaultConfig()
	cfg.TableSize = 1
	cfg.Capacity = 1
	s := session.New(cfg)
	ctx := context.Background()

	_, err := s.FindCollision(ctx, 5, replay(t, "a", "b"))
	require.NoError(t, err)

	out, err := s.FindCollision(ctx, 5, replay(t, "c", "d"))
	require.ErrorIs(t, err, results.ErrCapacityExceeded)
	assert.True(t, out.Found(), "outcome survives a failed append")
	assert.Equal(t, "d", string(out.Input))

	assert.Equal(t, 1, s.Store().Len())
	assert.Equal(t, "b", string(s.Store().All()[0].Input))
	assert.Equal(t, uint64(2), s.Store().Stats().TotalCollisionsFound)
}

func TestFindCollision_AllocationFailure(t *testing.T) {
	t.Parallel()

	cfg := session.DefaultConfig()
	cfg.MemoryBudget = 1
	s := session.New(cfg)

	_, err := s.FindCollision(context.Background(), 10, collision.NewSeededSource(1))
	require.ErrorIs(t, err, collision.ErrAllocation)
	assert.Zero(t, s.Store().Stats().TotalCollisionsFound)
}

func TestFindCollision_ConcurrentCallsSerialize(t *testing.T) {
	t.Parallel()

	cfg := session.DefaultConfig()
	cfg.TableSize = 1000
	s := session.New(cfg)

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := s.FindCollision(context.Background(), 10_000, collision.NewSeededSource(uint64(i)))
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	assert.Equal(t, 8, s.Store().Len())
	assert.Equal(t, uint64(8), s.Store().Stats().TotalCollisionsFound)
}

func TestReverseLookup(t *testing.T) {
	t.Parallel()

	s := session.New(session.DefaultConfig())
	ctx := context.Background()

	res, err := s.ReverseLookup(ctx, mixhash.SumString("Z9"), 0)
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "Z9", string(res.Input))

	_, err = s.ReverseLookup(ctx, 1, reverse.DefaultLengthLimit+1)
	require.ErrorIs(t, err, reverse.ErrInvalidLength)
}

func TestReverseLookup_RaisedLengthLimit(t *testing.T) {
	t.Parallel()

	cfg := session.DefaultConfig()
	cfg.LengthLimit = 10

	res, err := session.New(cfg).ReverseLookup(context.Background(), mixhash.SumString("Z9"), 9)
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "Z9", string(res.Input))
}

func TestStripLineTerminator(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"abc\n":    "abc",
		"abc\r\n":  "abc",
		"abc":      "abc",
		"\n":       "",
		"a\nb\n\n": "a\nb",
		"":         "",
	}

	for in, want := range tests {
		assert.Equal(t, want, session.StripLineTerminator(in), "%q", in)
	}
}
