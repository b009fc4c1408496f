package summaries

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/concall/pkg/memstore"
)

// DefaultCapacity is the number of summaries retained in memory.
const DefaultCapacity = 200

type store struct {
	records *memstore.Store[Record]
	archive Archive
	logger  *slog.Logger
}

// Option configures the summary System.
type Option func(*store)

// WithArchive copies every saved record to archive and falls back to it
// for records no longer held in memory.
func WithArchive(archive Archive) Option {
	return func(s *store) {
		s.archive = archive
	}
}

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *store) {
		s.records = memstore.New(s.records.Capacity(), memstore.WithClock[Record](now))
	}
}

// New creates a summary System retaining at most capacity records in memory.
func New(capacity int, logger *slog.Logger, opts ...Option) System {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &store{
		records: memstore.New[Record](capacity),
		logger:  logger.With("system", "summaries"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *store) Save(ctx context.Context, summary Summary, meta Meta) Record {
	rec, evicted := s.records.Create(func(id uuid.UUID, createdAt time.Time) Record {
		meta.SummaryID = id
		return Record{
			ID:        id,
			Summary:   summary,
			Meta:      meta,
			CreatedAt: createdAt,
		}
	})

	if len(evicted) > 0 {
		s.logger.Debug("summaries evicted", "count", len(evicted))
	}

	if s.archive != nil {
		if err := s.archive.Put(ctx, rec); err != nil {
			s.logger.Error("summary archive failed", "summary_id", rec.ID, "error", err)
		}
	}

	return rec
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (Record, error) {
	rec, err := s.records.Get(id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, memstore.ErrNotFound) {
		return Record{}, err
	}

	if s.archive == nil {
		return Record{}, ErrNotFound
	}

	rec, err = s.archive.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("summary archive lookup failed", "summary_id", id, "error", err)
		}
		return Record{}, ErrNotFound
	}
	return rec, nil
}
