// Package results keeps the bounded record of confirmed collisions plus the
// session counters, and persists them in text, JSON or YAML form.
package results

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
)

// DefaultCapacity is the record limit when none is configured.
const DefaultCapacity = 100

// ErrCapacityExceeded is returned when appending to a full store.
var ErrCapacityExceeded = errors.New("results: store capacity exceeded")

// Record is one confirmed collision.
type Record struct {
	Input        []byte
	Hash         uint32
	CollidesWith []byte
	// Attempts is the attempt index at which the collision was confirmed.
	Attempts uint64
}

// HasCollision reports whether the record names a colliding partner.
func (r Record) HasCollision() bool {
	return len(r.CollidesWith) > 0
}

// Equal reports whether two records hold the same values.
func (r Record) Equal(o Record) bool {
	return r.Hash == o.Hash && r.Attempts == o.Attempts &&
		bytes.Equal(r.Input, o.Input) && bytes.Equal(r.CollidesWith, o.CollidesWith)
}

func (r Record) clone() Record {
	r.Input = bytes.Clone(r.Input)
	r.CollidesWith = bytes.Clone(r.CollidesWith)

	return r
}

// Stats summarizes a store.
type Stats struct {
	TotalStringsHashed   uint64
	TotalCollisionsFound uint64
	// FastestCollisionAttempts is the first record's attempt count, nil when
	// the store is empty. It is not a minimum over all records.
	FastestCollisionAttempts *uint64
}

// Snapshot is the persisted form of a store.
type Snapshot struct {
	Records              []Record
	TotalStringsHashed   uint64
	TotalCollisionsFound uint64
}

// Store is an append-only, capacity-bounded record list. It is safe for
// concurrent use.
type Store struct {
	mu         sync.RWMutex
	capacity   int
	records    []Record
	hashed     uint64
	collisions uint64
}

// NewStore returns an empty store. A non-positive capacity selects
// DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Store{capacity: capacity, records: make([]Record, 0, capacity)}
}

// Capacity returns the record limit.
func (s *Store) Capacity() int {
	return s.capacity
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Append adds rec. A full store returns ErrCapacityExceeded and is left
// unchanged.
func (s *Store) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) >= s.capacity {
		return fmt.Errorf("%w: limit is %d records", ErrCapacityExceeded, s.capacity)
	}

	s.records = append(s.records, rec.clone())

	return nil
}

// All returns a copy of the records in insertion order.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.clone()
	}

	return out
}

// AddHashed adds n to the hashed-strings counter.
func (s *Store) AddHashed(n uint64) {
	s.mu.Lock()
	s.hashed += n
	s.mu.Unlock()
}

// AddCollision increments the collisions counter.
func (s *Store) AddCollision() {
	s.mu.Lock()
	s.collisions++
	s.mu.Unlock()
}

// Stats returns the counters and the first record's attempts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalStringsHashed:   s.hashed,
		TotalCollisionsFound: s.collisions,
	}

	if len(s.records) > 0 {
		first := s.records[0].Attempts
		st.FastestCollisionAttempts = &first
	}

	return st
}

// Snapshot captures records and counters.
func (s *Store) Snapshot() Snapshot {
	records := s.All()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Records:              records,
		TotalStringsHashed:   s.hashed,
		TotalCollisionsFound: s.collisions,
	}
}

// Restore replaces the store contents with snap. A snapshot holding more
// records than the capacity returns ErrCapacityExceeded and changes nothing.
func (s *Store) Restore(snap Snapshot) error {
	if len(snap.Records) > s.capacity {
		return fmt.Errorf("%w: snapshot has %d records, limit is %d",
			ErrCapacityExceeded, len(snap.Records), s.capacity)
	}

	records := make([]Record, len(snap.Records), s.capacity)
	for i, rec := range snap.Records {
		records[i] = rec.clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = records
	s.hashed = snap.TotalStringsHashed
	s.collisions = snap.TotalCollisionsFound

	return nil
}
