package summaries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/concall/pkg/storage"
)

// Archive persists summary records outside process memory.
type Archive interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id uuid.UUID) (Record, error)
}

type blobArchive struct {
	store storage.System
	cfg   storage.Config
}

// NewBlobArchive stores records as JSON blobs named <prefix>/<id>.json.
func NewBlobArchive(store storage.System, cfg storage.Config) Archive {
	return &blobArchive{store: store, cfg: cfg}
}

func (a *blobArchive) key(id uuid.UUID) string {
	return a.cfg.Key(id.String() + ".json")
}

func (a *blobArchive) Put(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return a.store.Upload(ctx, a.key(rec.ID), data, "application/json")
}

func (a *blobArchive) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	data, err := a.store.Download(ctx, a.key(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return rec, nil
}
