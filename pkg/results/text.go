package results

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const (
	textHeader           = "Hash Results:"
	textCollidedPrefix   = "   Collided with: "
	textAttemptsPrefix   = "   Attempts: "
	textHashedPrefix     = "Strings hashed: "
	textCollisionsPrefix = "Collisions found: "
)

var textEntry = regexp.MustCompile(`^(\d+)\. Input: (.*) \| Hash: (\d+)$`)

// TextCodec reads and writes the plain report format:
//
//	Hash Results:
//	1. Input: abd | Hash: 620630814
//	   Collided with: abc
//	   Attempts: 1
//	Strings hashed: 7
//	Collisions found: 1
//
// The attempts line and the two counter lines are written only when
// non-zero. Missing lines decode as zero.
type TextCodec struct{}

// Encode implements Codec.Encode.
func (TextCodec) Encode(w io.Writer, snap Snapshot) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, textHeader)

	for i, rec := range snap.Records {
		if bytes.ContainsAny(rec.Input, "\r\n") || bytes.ContainsAny(rec.CollidesWith, "\r\n") {
			return fmt.Errorf("%w: record %d contains a line break", ErrMalformed, i+1)
		}

		fmt.Fprintf(bw, "%d. Input: %s | Hash: %d\n", i+1, rec.Input, rec.Hash)

		if rec.HasCollision() {
			fmt.Fprintf(bw, "%s%s\n", textCollidedPrefix, rec.CollidesWith)
		}

		if rec.Attempts > 0 {
			fmt.Fprintf(bw, "%s%d\n", textAttemptsPrefix, rec.Attempts)
		}
	}

	if snap.TotalStringsHashed > 0 {
		fmt.Fprintf(bw, "%s%d\n", textHashedPrefix, snap.TotalStringsHashed)
	}

	if snap.TotalCollisionsFound > 0 {
		fmt.Fprintf(bw, "%s%d\n", textCollisionsPrefix, snap.TotalCollisionsFound)
	}

	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("text encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (TextCodec) Decode(r io.Reader) (Snapshot, error) {
	sc := bufio.NewScanner(r)

	if !sc.Scan() || strings.TrimRight(sc.Text(), "\r") != textHeader {
		if err := sc.Err(); err != nil {
			return Snapshot{}, fmt.Errorf("text decode: %w", err)
		}

		return Snapshot{}, fmt.Errorf("%w: missing %q header", ErrMalformed, textHeader)
	}

	var snap Snapshot

	for line := 2; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r")

		switch {
		case text == "":
			continue
		case strings.HasPrefix(text, textCollidedPrefix):
			if len(snap.Records) == 0 {
				return Snapshot{}, fmt.Errorf("%w: line %d: partner without entry", ErrMalformed, line)
			}

			last := &snap.Records[len(snap.Records)-1]
			last.CollidesWith = []byte(strings.TrimPrefix(text, textCollidedPrefix))
		case strings.HasPrefix(text, textAttemptsPrefix):
			if len(snap.Records) == 0 {
				return Snapshot{}, fmt.Errorf("%w: line %d: attempts without entry", ErrMalformed, line)
			}

			n, err := parseTextCount(text, textAttemptsPrefix)
			if err != nil {
				return Snapshot{}, fmt.Errorf("line %d: %w", line, err)
			}

			snap.Records[len(snap.Records)-1].Attempts = n
		case strings.HasPrefix(text, textHashedPrefix):
			n, err := parseTextCount(text, textHashedPrefix)
			if err != nil {
				return Snapshot{}, fmt.Errorf("line %d: %w", line, err)
			}

			snap.TotalStringsHashed = n
		case strings.HasPrefix(text, textCollisionsPrefix):
			n, err := parseTextCount(text, textCollisionsPrefix)
			if err != nil {
				return Snapshot{}, fmt.Errorf("line %d: %w", line, err)
			}

			snap.TotalCollisionsFound = n
		default:
			rec, err := parseTextEntry(text, len(snap.Records)+1)
			if err != nil {
				return Snapshot{}, fmt.Errorf("line %d: %w", line, err)
			}

			snap.Records = append(snap.Records, rec)
		}
	}

	if err := sc.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("text decode: %w", err)
	}

	return snap, nil
}

func parseTextEntry(text string, wantIndex int) (Record, error) {
	m := textEntry.FindStringSubmatch(text)
	if m == nil {
		return Record{}, fmt.Errorf("%w: unrecognized entry %q", ErrMalformed, text)
	}

	if m[1] != strconv.Itoa(wantIndex) {
		return Record{}, fmt.Errorf("%w: entry %s out of order, want %d", ErrMalformed, m[1], wantIndex)
	}

	h, err := strconv.ParseUint(m[3], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("%w: hash %q: %w", ErrMalformed, m[3], err)
	}

	return Record{Input: []byte(m[2]), Hash: uint32(h)}, nil
}

func parseTextCount(text, prefix string) (uint64, error) {
	raw := strings.TrimPrefix(text, prefix)

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%q: %w", ErrMalformed, prefix, raw, err)
	}

	return n, nil
}

// Extension implements Codec.Extension.
func (TextCodec) Extension() string {
	return textExtension
}
