package summaries

import (
	"errors"
	"net/http"
)

// Domain errors for summary operations.
var (
	ErrNotFound   = errors.New("summary not found or expired")
	ErrValidation = errors.New("invalid summary payload")
	ErrRender     = errors.New("failed to render summary")
)

// ValidationError identifies the payload field that failed validation.
// Field is empty when the failure concerns the payload as a whole.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MapHTTPStatus maps summary domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
