package jobs

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/concall/internal/summaries"
)

// Status is the processing state of a job.
type Status string

// Job statuses. Completed and failed are terminal.
const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

var transitions = map[Status][]Status{
	StatusQueued:     {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// Result is the outcome of a completed job.
type Result struct {
	Summary summaries.Summary `json:"summary"`
	Meta    summaries.Meta    `json:"meta"`
}

// Failure is the outcome of a failed job. StatusCode is the HTTP status
// reported when the job is polled.
type Failure struct {
	Message    string  `json:"message"`
	Details    any     `json:"details"`
	RawOutput  *string `json:"raw_output"`
	StatusCode int     `json:"status_code"`
}

// Job tracks one uploaded transcript through the pipeline.
type Job struct {
	ID        uuid.UUID `json:"id"`
	Status    Status    `json:"status"`
	RequestID string    `json:"request_id"`
	Result    *Result   `json:"result,omitempty"`
	Error     *Failure  `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
