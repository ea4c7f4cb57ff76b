package collision

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand/v2"
)

// RandomSource supplies the draws that shape each candidate string.
type RandomSource interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// splitmix64 constants from the splitmix64 finalizer by Vigna (2014).
const (
	splitmixIncrement = 0x9e3779b97f4a7c15
	splitmixMul1      = 0xbf58476d1ce4e5b9
	splitmixMul2      = 0x94d049bb133111eb
)

// SeededSource is a deterministic RandomSource backed by PCG.
type SeededSource struct {
	rng *rand.Rand
}

// NewSeededSource returns a source whose draws depend only on seed. The PCG
// stream is derived from the seed with splitmix64 so nearby seeds diverge.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rng: rand.New(rand.NewPCG(seed, splitmix64(seed)))}
}

// IntN implements RandomSource.
func (s *SeededSource) IntN(n int) int {
	return s.rng.IntN(n)
}

func splitmix64(state uint64) uint64 {
	z := state + splitmixIncrement
	z = (z ^ (z >> 30)) * splitmixMul1
	z = (z ^ (z >> 27)) * splitmixMul2

	return z ^ (z >> 31)
}

// ErrReplayExhausted is the panic value when a ReplaySource runs out of draws.
var ErrReplayExhausted = errors.New("collision: replay source exhausted")

// ErrNotReplayable is returned when a string cannot be produced by the generator.
var ErrNotReplayable = errors.New("collision: string cannot be generated")

// ReplaySource returns a fixed sequence of draws. It reproduces a known
// search exactly and panics with ErrReplayExhausted when drained.
type ReplaySource struct {
	draws []int
	pos   int
}

// NewReplaySource returns a source yielding draws in order.
func NewReplaySource(draws ...int) *ReplaySource {
	return &ReplaySource{draws: append([]int(nil), draws...)}
}

// ReplayFor returns a source that makes the generator emit candidates in
// order, one per attempt.
func ReplayFor(candidates ...string) (*ReplaySource, error) {
	var draws []int

	for _, c := range candidates {
		if len(c) < 1 || len(c) > MaxCandidateLen {
			return nil, fmt.Errorf("%w: %q has length %d", ErrNotReplayable, c, len(c))
		}

		draws = append(draws, len(c)-1)

		for i := range len(c) {
			pos := bytes.IndexByte(Alphabet, c[i])
			if pos < 0 {
				return nil, fmt.Errorf("%w: %q contains %q", ErrNotReplayable, c, c[i])
			}

			draws = append(draws, pos)
		}
	}

	return NewReplaySource(draws...), nil
}

// IntN implements RandomSource. Draws are reduced modulo n.
func (r *ReplaySource) IntN(n int) int {
	if r.pos >= len(r.draws) {
		panic(ErrReplayExhausted)
	}

	v := r.draws[r.pos]
	r.pos++

	return v % n
}

// Remaining returns the number of unused draws.
func (r *ReplaySource) Remaining() int {
	return len(r.draws) - r.pos
}
