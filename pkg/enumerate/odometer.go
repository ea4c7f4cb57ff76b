// Package enumerate produces every fixed-length tuple over an alphabet in
// mixed-radix counter order.
//
// Position 0 is the fastest-moving digit: after "aa" comes "ba", then "ca",
// and so on until position 0 wraps and carries into position 1, like an
// odometer read left to right.
package enumerate

import (
	"errors"
	"iter"
	"math/bits"
)

var (
	// ErrEmptyAlphabet is returned when the alphabet has no symbols.
	ErrEmptyAlphabet = errors.New("enumerate: alphabet must not be empty")

	// ErrInvalidLength is returned when the tuple length is not positive.
	ErrInvalidLength = errors.New("enumerate: length must be positive")
)

// Odometer is a restartable, finite generator of tuples. It is not safe for
// concurrent use.
type Odometer struct {
	alphabet []byte
	indices  []int
	buf      []byte
	started  bool
	done     bool
}

// New creates an odometer over alphabet producing tuples of the given length.
func New(alphabet []byte, length int) (*Odometer, error) {
	if len(alphabet) == 0 {
		return nil, ErrEmptyAlphabet
	}

	if length <= 0 {
		return nil, ErrInvalidLength
	}

	o := &Odometer{
		alphabet: append([]byte(nil), alphabet...),
		indices:  make([]int, length),
		buf:      make([]byte, length),
	}
	o.Reset()

	return o, nil
}

// Reset rewinds the odometer to before the first tuple.
func (o *Odometer) Reset() {
	for i := range o.indices {
		o.indices[i] = 0
		o.buf[i] = o.alphabet[0]
	}

	o.started = false
	o.done = false
}

// Next advances to the following tuple and reports whether one exists.
func (o *Odometer) Next() bool {
	if o.done {
		return false
	}

	if !o.started {
		o.started = true

		return true
	}

	radix := len(o.alphabet)

	for i := range o.indices {
		o.indices[i]++
		if o.indices[i] < radix {
			o.buf[i] = o.alphabet[o.indices[i]]

			return true
		}

		o.indices[i] = 0
		o.buf[i] = o.alphabet[0]
	}

	o.done = true

	return false
}

// Value returns the current tuple. The slice is reused by Next; copy it to
// keep it.
func (o *Odometer) Value() []byte {
	return o.buf
}

// Len returns the tuple length.
func (o *Odometer) Len() int {
	return len(o.indices)
}

// Count returns the total number of tuples, alphabet^length. ok is false if
// the count overflows uint64.
func (o *Odometer) Count() (count uint64, ok bool) {
	return Count(len(o.alphabet), len(o.indices))
}

// Count returns radix^length, or ok=false on uint64 overflow.
func Count(radix, length int) (count uint64, ok bool) {
	count = 1

	for range length {
		hi, lo := bits.Mul64(count, uint64(radix))
		if hi != 0 {
			return 0, false
		}

		count = lo
	}

	return count, true
}

// Tuples returns a sequence over all tuples of the given length. Each call
// to the returned function starts from the first tuple. The yielded slice is
// reused between iterations.
func Tuples(alphabet []byte, length int) (iter.Seq[[]byte], error) {
	o, err := New(alphabet, length)
	if err != nil {
		return nil, err
	}

	return func(yield func([]byte) bool) {
		o.Reset()

		for o.Next() {
			if !yield(o.Value()) {
				return
			}
		}
	}, nil
}
