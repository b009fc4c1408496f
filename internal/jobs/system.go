package jobs

import "github.com/google/uuid"

// System defines the public contract for job tracking.
// Every transition stamps UpdatedAt; terminal states reject further updates
// with ErrInvalidTransition.
type System interface {
	Handler() *Handler

	Create(requestID string) Job
	Find(id uuid.UUID) (Job, error)

	Start(id uuid.UUID) (Job, error)
	Complete(id uuid.UUID, result Result) (Job, error)
	Fail(id uuid.UUID, failure Failure) (Job, error)
}
