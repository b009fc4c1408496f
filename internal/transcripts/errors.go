package transcripts

import (
	"errors"
	"net/http"
)

// Domain errors for transcript uploads. Messages are returned to callers verbatim.
var (
	ErrMissingFile = errors.New("No PDF uploaded. Use field name: transcript")
	ErrNotPDF      = errors.New("Only PDF files are supported")
	ErrTooLarge    = errors.New("PDF too large")
)

// MapHTTPStatus maps transcript upload errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingFile), errors.Is(err, ErrNotPDF), errors.Is(err, ErrTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
