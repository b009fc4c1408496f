package summaries

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for summary domain operations.
type System interface {
	Handler() *Handler

	// Save stores a normalized summary and returns the immutable record.
	// meta.SummaryID is set to the new record id.
	Save(ctx context.Context, summary Summary, meta Meta) Record

	// Find returns the record for id, consulting the archive when the
	// record has been evicted from memory.
	Find(ctx context.Context, id uuid.UUID) (Record, error)
}
