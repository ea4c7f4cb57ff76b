// Package mixhash implements a 32-bit non-cryptographic string hash.
//
// The function seeds an accumulator with the FNV-1a offset basis and, for
// every input byte, runs an FNV-style xor-multiply followed by the
// MurmurHash2 finalizer (shift-xor, multiply, shift-xor). All arithmetic is
// on uint32 and wraps modulo 2^32, so results are identical on every platform.
package mixhash

import "hash"

// Mixing constants.
const (
	// OffsetBasis is the initial accumulator value, returned unchanged for empty input.
	OffsetBasis uint32 = 0x811c9dc5

	// Prime is the FNV-1 32-bit prime applied after the byte xor.
	Prime uint32 = 16777619

	// MurmurMul is the MurmurHash2 multiplier applied between the two shift-xors.
	MurmurMul uint32 = 0x5bd1e995

	// Shift1 is the first right-shift.
	Shift1 = 13

	// Shift2 is the final right-shift.
	Shift2 = 15
)

// Size is the digest size in bytes.
const Size = 4

// Sum32 returns the hash of data.
func Sum32(data []byte) uint32 {
	h := OffsetBasis
	for _, b := range data {
		h = mixByte(h, b)
	}

	return h
}

// SumString returns the hash of s without copying it.
func SumString(s string) uint32 {
	h := OffsetBasis
	for i := range len(s) {
		h = mixByte(h, s[i])
	}

	return h
}

func mixByte(h uint32, b byte) uint32 {
	h ^= uint32(b)
	h *= Prime
	h ^= h >> Shift1
	h *= MurmurMul
	h ^= h >> Shift2

	return h
}

// digest is the streaming form of Sum32.
type digest uint32

// New returns a hash.Hash32 computing the same value as Sum32 over all
// bytes written to it.
func New() hash.Hash32 {
	d := digest(OffsetBasis)

	return &d
}

func (d *digest) Write(p []byte) (int, error) {
	h := uint32(*d)
	for _, b := range p {
		h = mixByte(h, b)
	}

	*d = digest(h)

	return len(p), nil
}

func (d *digest) Sum(in []byte) []byte {
	v := uint32(*d)

	return append(in, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (d *digest) Sum32() uint32 { return uint32(*d) }

func (d *digest) Reset() { *d = digest(OffsetBasis) }

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return 1 }
