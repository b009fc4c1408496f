package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/concall/pkg/memstore"
)

// DefaultCapacity is the number of jobs retained in memory.
const DefaultCapacity = 500

type store struct {
	jobs   *memstore.Store[Job]
	now    func() time.Time
	logger *slog.Logger
}

// Option configures the job System.
type Option func(*store)

// WithClock overrides the time source used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *store) {
		s.now = now
		s.jobs = memstore.New(s.jobs.Capacity(), memstore.WithClock[Job](now))
	}
}

// New creates a job System retaining at most capacity jobs. Jobs beyond
// capacity are evicted oldest-created first regardless of status.
func New(capacity int, logger *slog.Logger, opts ...Option) System {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &store{
		jobs:   memstore.New[Job](capacity),
		now:    time.Now,
		logger: logger.With("system", "jobs"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *store) Create(requestID string) Job {
	job, evicted := s.jobs.Create(func(id uuid.UUID, createdAt time.Time) Job {
		return Job{
			ID:        id,
			Status:    StatusQueued,
			RequestID: requestID,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
	})

	if len(evicted) > 0 {
		s.logger.Debug("jobs evicted", "count", len(evicted))
	}
	return job
}

func (s *store) Find(id uuid.UUID) (Job, error) {
	job, err := s.jobs.Get(id)
	if err != nil {
		return Job{}, s.mapErr(err)
	}
	return job, nil
}

func (s *store) Start(id uuid.UUID) (Job, error) {
	return s.transition(id, StatusProcessing, nil)
}

func (s *store) Complete(id uuid.UUID, result Result) (Job, error) {
	return s.transition(id, StatusCompleted, func(j *Job) {
		j.Result = &result
	})
}

func (s *store) Fail(id uuid.UUID, failure Failure) (Job, error) {
	return s.transition(id, StatusFailed, func(j *Job) {
		j.Error = &failure
	})
}

func (s *store) transition(id uuid.UUID, to Status, apply func(*Job)) (Job, error) {
	job, err := s.jobs.Update(id, func(j *Job) error {
		if !slices.Contains(transitions[j.Status], to) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, j.Status, to)
		}
		j.Status = to
		j.UpdatedAt = s.now()
		if apply != nil {
			apply(j)
		}
		return nil
	})
	if err != nil {
		return job, s.mapErr(err)
	}
	return job, nil
}

func (s *store) mapErr(err error) error {
	if errors.Is(err, memstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
