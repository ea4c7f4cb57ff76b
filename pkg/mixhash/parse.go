package mixhash

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidHash is returned when a hash value cannot be parsed.
var ErrInvalidHash = errors.New("mixhash: invalid hash value")

// ParseHash parses a 32-bit hash written in decimal or as 0x-prefixed hex.
func ParseHash(s string) (uint32, error) {
	s = strings.TrimSpace(s)

	base := 10
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		s, base = rest, 16
	}

	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}

	return uint32(v), nil
}
