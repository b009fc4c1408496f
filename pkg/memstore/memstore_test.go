package memstore_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/concall/pkg/memstore"
)

type record struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Count     int
}

func build(count int) func(uuid.UUID, time.Time) record {
	return func(id uuid.UUID, createdAt time.Time) record {
		return record{ID: id, CreatedAt: createdAt, Count: count}
	}
}

func steppedClock() func() time.Time {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Millisecond)
	}
}

func TestCreateAndGet(t *testing.T) {
	s := memstore.New[record](10)

	created, evicted := s.Create(build(1))
	if len(evicted) != 0 {
		t.Errorf("unexpected eviction: %v", evicted)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected creation time")
	}

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != created {
		t.Errorf("got %+v, want %+v", got, created)
	}
}

func TestGetMissing(t *testing.T) {
	s := memstore.New[record](10)

	if _, err := s.Get(uuid.New()); !errors.Is(err, memstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestEvictsOldestBeyondCapacity(t *testing.T) {
	s := memstore.New(500, memstore.WithClock[record](steppedClock()))

	var first record
	for i := range 500 {
		r, evicted := s.Create(build(i))
		if i == 0 {
			first = r
		}
		if len(evicted) != 0 {
			t.Fatalf("insert %d evicted %v", i, evicted)
		}
	}

	second, _ := s.Create(build(500))
	if s.Len() != 500 {
		t.Fatalf("len: got %d, want 500", s.Len())
	}

	if _, err := s.Get(first.ID); !errors.Is(err, memstore.ErrNotFound) {
		t.Error("oldest record should be evicted")
	}
	if _, err := s.Get(second.ID); err != nil {
		t.Error("newest record should be retained")
	}
}

func TestEvictionIgnoresUpdates(t *testing.T) {
	s := memstore.New(2, memstore.WithClock[record](steppedClock()))

	a, _ := s.Create(build(0))
	b, _ := s.Create(build(0))

	if _, err := s.Update(a.ID, func(r *record) error {
		r.Count = 99
		return nil
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	_, evicted := s.Create(build(0))
	if len(evicted) != 1 || evicted[0] != a.ID {
		t.Errorf("expected %s evicted, got %v", a.ID, evicted)
	}
	if _, err := s.Get(b.ID); err != nil {
		t.Error("second record should be retained")
	}
}

func TestEvictionTieBreaksByInsertion(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := memstore.New(2, memstore.WithClock[record](func() time.Time { return fixed }))

	a, _ := s.Create(build(0))
	s.Create(build(0))
	_, evicted := s.Create(build(0))

	if len(evicted) != 1 || evicted[0] != a.ID {
		t.Errorf("expected first insert evicted, got %v", evicted)
	}
}

func TestUpdate(t *testing.T) {
	s := memstore.New[record](10)
	r, _ := s.Create(build(1))

	t.Run("applies patch", func(t *testing.T) {
		got, err := s.Update(r.ID, func(rec *record) error {
			rec.Count = 2
			return nil
		})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if got.Count != 2 {
			t.Errorf("count: got %d, want 2", got.Count)
		}
	})

	t.Run("error leaves record unchanged", func(t *testing.T) {
		sentinel := errors.New("rejected")
		_, err := s.Update(r.ID, func(rec *record) error {
			rec.Count = 100
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("got %v, want sentinel", err)
		}
		got, _ := s.Get(r.ID)
		if got.Count != 2 {
			t.Errorf("count: got %d, want 2", got.Count)
		}
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		missing := uuid.New()
		called := false
		_, err := s.Update(missing, func(rec *record) error {
			called = true
			return nil
		})
		if !errors.Is(err, memstore.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
		if called {
			t.Error("patch should not run for a missing id")
		}
		if s.Len() != 1 {
			t.Errorf("len: got %d, want 1", s.Len())
		}
	})
}

func TestConcurrentAccess(t *testing.T) {
	s := memstore.New[record](50)

	var wg sync.WaitGroup
	for i := range 200 {
		wg.Go(func() {
			r, _ := s.Create(build(i))
			s.Update(r.ID, func(rec *record) error {
				rec.Count++
				return nil
			})
			s.Get(r.ID)
		})
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Errorf("len: got %d, want 50", s.Len())
	}
}
