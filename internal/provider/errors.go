package provider

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingAPIKey indicates no API key is configured.
	ErrMissingAPIKey = errors.New("missing provider api key")
	// ErrRequestFailed indicates a transport failure or a non-2xx provider response.
	ErrRequestFailed = errors.New("gemini api request failed")
	// ErrInvalidResponse indicates the response envelope carried no usable text.
	ErrInvalidResponse = errors.New("gemini returned an invalid response")
	// ErrInvalidJSON indicates the model text could not be parsed as JSON.
	ErrInvalidJSON = errors.New("model returned invalid json")
)

// RequestError describes a failed provider call. StatusCode is zero for
// transport failures. Body holds the decoded JSON error body when the
// provider sent one, otherwise the raw text.
type RequestError struct {
	StatusCode int
	Body       any
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d)", ErrRequestFailed, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrRequestFailed, e.Err)
	}
	return ErrRequestFailed.Error()
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRequestFailed}
	}
	return []error{ErrRequestFailed, e.Err}
}

// MapHTTPStatus maps provider errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrRequestFailed),
		errors.Is(err, ErrInvalidResponse),
		errors.Is(err, ErrInvalidJSON):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
