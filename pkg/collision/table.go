package collision

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/dustin/go-humanize"
)

// DefaultTableSize is the bucket count of the search table, a prime just
// above one million.
const DefaultTableSize = 1_000_003

// keyWidth is the fixed width of a bucket's string slot.
const keyWidth = 16

// ErrAllocation is returned when the search table cannot be allocated.
var ErrAllocation = errors.New("collision: table allocation failed")

// bucket holds the last (hash, string) pair stored at one table index.
// A zero hash marks the bucket as empty.
type bucket struct {
	hash uint32
	n    uint8
	key  [keyWidth]byte
}

// BucketBytes is the memory used by one bucket.
const BucketBytes = uint64(unsafe.Sizeof(bucket{}))

// Table maps hash mod size to the most recently stored pair.
type Table struct {
	buckets []bucket
	stored  uint64
}

// TableBytes returns the memory a table of size buckets needs.
func TableBytes(size int) uint64 {
	if size <= 0 {
		return 0
	}

	return uint64(size) * BucketBytes
}

// MaxTableSize is the largest bucket count a 32-bit hash can address.
const MaxTableSize = math.MaxUint32

// NewTable allocates a table with size buckets. A size outside
// [1, MaxTableSize], or a table larger than budget bytes (when budget is
// non-zero), fails with ErrAllocation before anything is allocated.
func NewTable(size int, budget uint64) (*Table, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrAllocation, size)
	}

	if uint64(size) > MaxTableSize {
		return nil, fmt.Errorf("%w: %d buckets exceed the hash range of %d", ErrAllocation, size, uint64(MaxTableSize))
	}

	need := TableBytes(size)
	if budget > 0 && need > budget {
		return nil, fmt.Errorf("%w: %d buckets need %s, budget is %s",
			ErrAllocation, size, humanize.IBytes(need), humanize.IBytes(budget))
	}

	return &Table{buckets: make([]bucket, size)}, nil
}

// Len returns the number of buckets.
func (t *Table) Len() int {
	return len(t.buckets)
}

// Stored returns how many Store calls the table has seen.
func (t *Table) Stored() uint64 {
	return t.stored
}

// Index reduces h to a bucket index.
func (t *Table) Index(h uint32) int {
	return int(h % uint32(len(t.buckets)))
}

// Occupant returns the string in bucket idx and whether it differs from key.
// A bucket whose stored hash is zero counts as empty, so a string hashing to
// exactly zero is never seen as an occupant.
func (t *Table) Occupant(idx int, key []byte) (occupant []byte, collides bool) {
	b := &t.buckets[idx]
	if b.hash == 0 {
		return nil, false
	}

	stored := b.key[:b.n]
	if bytes.Equal(stored, key) {
		return nil, false
	}

	return append([]byte(nil), stored...), true
}

// Store overwrites bucket idx with (h, key). Keys longer than the slot are
// truncated.
func (t *Table) Store(idx int, h uint32, key []byte) {
	b := &t.buckets[idx]
	b.hash = h
	b.n = uint8(copy(b.key[:], key))
	t.stored++
}
