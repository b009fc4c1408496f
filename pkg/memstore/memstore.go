// Package memstore provides a bounded, in-process key-value store keyed by UUID.
// When the store grows past its capacity, the oldest records by creation time are
// evicted first. Eviction order is insertion age, not access recency.
package memstore

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist or has been evicted.
var ErrNotFound = errors.New("record not found")

type entry[T any] struct {
	value     T
	createdAt time.Time
	seq       uint64
}

// Store is a concurrency-safe bounded map from UUID to T.
type Store[T any] struct {
	mu       sync.RWMutex
	capacity int
	records  map[uuid.UUID]*entry[T]
	seq      uint64
	now      func() time.Time
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithClock overrides the time source used to stamp creation times.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) {
		s.now = now
	}
}

// New creates a Store that retains at most capacity records.
// A non-positive capacity disables eviction.
func New[T any](capacity int, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		capacity: capacity,
		records:  make(map[uuid.UUID]*entry[T]),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create inserts value under a freshly generated id and evicts the oldest
// records if the store now exceeds capacity. build receives the id and the
// creation time so the caller can embed them in the stored value.
func (s *Store[T]) Create(build func(id uuid.UUID, createdAt time.Time) T) (T, []uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	now := s.now()
	s.seq++

	value := build(id, now)
	s.records[id] = &entry[T]{
		value:     value,
		createdAt: now,
		seq:       s.seq,
	}

	return value, s.evict()
}

// Get returns the record for id.
func (s *Store[T]) Get(id uuid.UUID) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.records[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return e.value, nil
}

// Update applies fn to a copy of the record for id and stores the result.
// If fn returns an error the record is left unchanged. Updating a missing id
// returns ErrNotFound and never creates a record.
func (s *Store[T]) Update(id uuid.UUID, fn func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.records[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}

	next := e.value
	if err := fn(&next); err != nil {
		return e.value, err
	}
	e.value = next

	return next, nil
}

// Len returns the number of records currently held.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Capacity returns the configured maximum number of records.
func (s *Store[T]) Capacity() int {
	return s.capacity
}

func (s *Store[T]) evict() []uuid.UUID {
	if s.capacity <= 0 || len(s.records) <= s.capacity {
		return nil
	}

	type aged struct {
		id        uuid.UUID
		createdAt time.Time
		seq       uint64
	}

	all := make([]aged, 0, len(s.records))
	for id, e := range s.records {
		all = append(all, aged{id: id, createdAt: e.createdAt, seq: e.seq})
	}

	slices.SortFunc(all, func(a, b aged) int {
		if c := a.createdAt.Compare(b.createdAt); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	overflow := all[:len(all)-s.capacity]
	evicted := make([]uuid.UUID, 0, len(overflow))
	for _, a := range overflow {
		delete(s.records, a.id)
		evicted = append(evicted, a.id)
	}
	return evicted
}
