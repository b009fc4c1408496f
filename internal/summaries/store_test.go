package summaries_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/concall/internal/summaries"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSummary() summaries.Summary {
	return summaries.Summary{
		Company:               "Acme Corp",
		Quarter:               "Q2 FY25",
		FinancialSentiment:    "positive",
		ConfidenceLevel:       "high",
		KeyHighlights:         []string{"Revenue up 12%"},
		RisksAndConcerns:      []string{},
		ManagementCommitments: []string{},
		GuidanceOutlook:       []string{"Raised guidance"},
		AnalystFocusAreas:     []string{},
		RuleBasedSentiment:    "positive",
		SentimentExplanation:  summaries.ExplanationPositive,
	}
}

type memArchive struct {
	mu      sync.Mutex
	records map[uuid.UUID]summaries.Record
	putErr  error
}

func newMemArchive() *memArchive {
	return &memArchive{records: make(map[uuid.UUID]summaries.Record)}
}

func (a *memArchive) Put(_ context.Context, rec summaries.Record) error {
	if a.putErr != nil {
		return a.putErr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[rec.ID] = rec
	return nil
}

func (a *memArchive) Get(_ context.Context, id uuid.UUID) (summaries.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.records[id]
	if !ok {
		return summaries.Record{}, summaries.ErrNotFound
	}
	return rec, nil
}

func TestSaveAndFind(t *testing.T) {
	sys := summaries.New(10, discardLogger())
	ctx := context.Background()

	rec := sys.Save(ctx, sampleSummary(), summaries.Meta{RequestID: "req-1"})
	if rec.ID == uuid.Nil {
		t.Fatal("expected id")
	}
	if rec.Meta.SummaryID != rec.ID {
		t.Errorf("meta summary_id = %s, want %s", rec.Meta.SummaryID, rec.ID)
	}

	got, err := sys.Find(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Meta.RequestID != "req-1" || got.Summary.Company != "Acme Corp" {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestFindUnknown(t *testing.T) {
	sys := summaries.New(10, discardLogger())

	_, err := sys.Find(context.Background(), uuid.New())
	if !errors.Is(err, summaries.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestEvictionOldestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	sys := summaries.New(summaries.DefaultCapacity, discardLogger(), summaries.WithClock(clock))
	ctx := context.Background()

	var ids []uuid.UUID
	for range summaries.DefaultCapacity + 1 {
		ids = append(ids, sys.Save(ctx, sampleSummary(), summaries.Meta{}).ID)
	}

	if _, err := sys.Find(ctx, ids[0]); !errors.Is(err, summaries.ErrNotFound) {
		t.Errorf("oldest record should be evicted, got %v", err)
	}
	for _, id := range ids[1:] {
		if _, err := sys.Find(ctx, id); err != nil {
			t.Fatalf("record %s missing: %v", id, err)
		}
	}
}

func TestArchiveFallback(t *testing.T) {
	archive := newMemArchive()
	sys := summaries.New(1, discardLogger(), summaries.WithArchive(archive))
	ctx := context.Background()

	first := sys.Save(ctx, sampleSummary(), summaries.Meta{RequestID: "first"})
	sys.Save(ctx, sampleSummary(), summaries.Meta{RequestID: "second"})

	got, err := sys.Find(ctx, first.ID)
	if err != nil {
		t.Fatalf("Find evicted record: %v", err)
	}
	if got.Meta.RequestID != "first" {
		t.Errorf("request_id = %s, want first", got.Meta.RequestID)
	}
}

func TestArchiveFailureDoesNotFailSave(t *testing.T) {
	archive := newMemArchive()
	archive.putErr = errors.New("unavailable")
	sys := summaries.New(5, discardLogger(), summaries.WithArchive(archive))
	ctx := context.Background()

	rec := sys.Save(ctx, sampleSummary(), summaries.Meta{})
	if _, err := sys.Find(ctx, rec.ID); err != nil {
		t.Errorf("record should remain in memory: %v", err)
	}
}
