package collision_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hashprobe/pkg/collision"
	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
)

func replay(t *testing.T, candidates ...string) *collision.ReplaySource {
	t.Helper()

	src, err := collision.ReplayFor(candidates...)
	require.NoError(t, err)

	return src
}

func TestFind_ZeroAttemptsSkipsTable(t *testing.T) {
	t.Parallel()

	// A zero table size would fail allocation, so success proves no table was built.
	f := collision.NewFinder(collision.WithTableSize(0))

	out, err := f.Find(context.Background(), 0, collision.NewReplaySource())
	require.NoError(t, err)
	assert.Equal(t, collision.StatusExhausted, out.Status)
	assert.Zero(t, out.Attempts)
	assert.Zero(t, out.Stored)
}

func TestFind_DistinctBucketsExhaust(t *testing.T) {
	t.Parallel()

	src := replay(t, "abc", "abd")

	out, err := collision.NewFinder().Find(context.Background(), 2, src)
	require.NoError(t, err)
	assert.Equal(t, collision.StatusExhausted, out.Status)
	assert.Equal(t, uint64(2), out.Attempts)
	assert.Equal(t, uint64(2), out.Stored)
	assert.Zero(t, src.Remaining())
}

func TestFind_SharedBucketFound(t *testing.T) {
	t.Parallel()

	src := replay(t, "abc", "abd")

	out, err := collision.NewFinder(collision.WithTableSize(1)).Find(context.Background(), 10, src)
	require.NoError(t, err)
	require.True(t, out.Found())
	assert.Equal(t, "abd", string(out.Input))
	assert.Equal(t, "abc", string(out.CollidesWith))
	assert.Equal(t, mixhash.SumString("abd"), out.Hash)
	assert.Equal(t, uint64(1), out.Attempt)
	assert.Equal(t, uint64(2), out.Attempts)
	assert.Equal(t, uint64(1), out.Stored)
}

func TestFind_RepeatedStringIsNotACollision(t *testing.T) {
	t.Parallel()

	src := replay(t, "aa", "aa", "aa")

	out, err := collision.NewFinder(collision.WithTableSize(1)).Find(context.Background(), 3, src)
	require.NoError(t, err)
	assert.Equal(t, collision.StatusExhausted, out.Status)
	assert.Equal(t, uint64(3), out.Stored)
}

func TestFind_ZeroHashLooksEmpty(t *testing.T) {
	t.Parallel()

	zero := func([]byte) uint32 { return 0 }
	src := replay(t, "a", "b", "c")

	f := collision.NewFinder(collision.WithTableSize(1), collision.WithHasher(zero))

	out, err := f.Find(context.Background(), 3, src)
	require.NoError(t, err)
	assert.Equal(t, collision.StatusExhausted, out.Status,
		"entries stored with hash 0 are indistinguishable from empty buckets")
	assert.Equal(t, uint64(3), out.Stored)
}

func TestFind_AllocationFailure(t *testing.T) {
	t.Parallel()

	f := collision.NewFinder(collision.WithMemoryBudget(1024))

	_, err := f.Find(context.Background(), 10, collision.NewSeededSource(1))
	require.ErrorIs(t, err, collision.ErrAllocation)
}

func TestFind_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := collision.NewFinder().Find(ctx, 10, collision.NewSeededSource(1))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Attempts)
}

func TestFind_ObserverSeesEveryAttempt(t *testing.T) {
	t.Parallel()

	var seen []string

	obs := collision.ObserverFunc(func(_ context.Context, ev collision.Event) {
		assert.Equal(t, uint64(len(seen)), ev.Index)
		assert.Equal(t, mixhash.Sum32(ev.Candidate), ev.Hash)
		seen = append(seen, string(ev.Candidate))
	})

	src := replay(t, "x", "y", "z")
	f := collision.NewFinder(collision.WithObserver(obs), collision.WithTableSize(1))

	out, err := f.Find(context.Background(), 3, src)
	require.NoError(t, err)
	require.True(t, out.Found())
	assert.Equal(t, []string{"x", "y"}, seen)
}

func TestFind_SeededSearchFindsBucketCollision(t *testing.T) {
	t.Parallel()

	f := collision.NewFinder()

	out, err := f.Find(context.Background(), 200_000, collision.NewSeededSource(42))
	require.NoError(t, err)
	require.True(t, out.Found())

	assert.False(t, bytes.Equal(out.Input, out.CollidesWith))
	assert.Equal(t, mixhash.Sum32(out.Input)%collision.DefaultTableSize,
		mixhash.Sum32(out.CollidesWith)%collision.DefaultTableSize)
	assert.Equal(t, out.Attempt+1, out.Attempts)
	assert.Equal(t, out.Attempt, out.Stored)
	assert.LessOrEqual(t, len(out.Input), collision.MaxCandidateLen)

	again, err := f.Find(context.Background(), 200_000, collision.NewSeededSource(42))
	require.NoError(t, err)
	assert.Equal(t, out.Input, again.Input)
	assert.Equal(t, out.Attempt, again.Attempt)
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "found", collision.StatusFound.String())
	assert.Equal(t, "exhausted", collision.StatusExhausted.String())
}
