package workflow

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/concall/internal/jobs"
	"github.com/JaimeStill/concall/internal/provider"
	"github.com/JaimeStill/concall/internal/summaries"
	"github.com/JaimeStill/concall/pkg/extract"
	"github.com/JaimeStill/concall/pkg/formatting"
)

// Caller-facing failure messages.
const (
	MsgDependencyMissing = "Could not extract text from PDF. PDF looks scanned, and OCR dependencies are missing on server."
	MsgUnusableText      = "Could not extract usable text from PDF, even after OCR."
	MsgRequestFailed     = "Failed to fetch response from Gemini API"
	MsgInvalidResponse   = "Gemini returned an invalid response"
	MsgInvalidJSON       = "Model returned invalid JSON"
	MsgInternal          = "Internal server error"
)

// Classify maps a pipeline error to the failure recorded on its job.
func Classify(err error) jobs.Failure {
	var depErr *extract.DependencyError
	if errors.As(err, &depErr) {
		return jobs.Failure{
			Message:    MsgDependencyMissing,
			Details:    depErr.Missing,
			StatusCode: http.StatusBadRequest,
		}
	}
	if errors.Is(err, extract.ErrDependencyMissing) {
		return jobs.Failure{
			Message:    MsgDependencyMissing,
			Details:    err.Error(),
			StatusCode: http.StatusBadRequest,
		}
	}

	if errors.Is(err, extract.ErrUnusableText) {
		return jobs.Failure{
			Message:    MsgUnusableText,
			StatusCode: http.StatusBadRequest,
		}
	}

	var reqErr *provider.RequestError
	if errors.As(err, &reqErr) {
		details := map[string]any{"status": nil, "body": reqErr.Body}
		if reqErr.StatusCode != 0 {
			details["status"] = reqErr.StatusCode
		}
		if reqErr.Body == nil && reqErr.Err != nil {
			details["body"] = reqErr.Err.Error()
		}
		return jobs.Failure{
			Message:    MsgRequestFailed,
			Details:    details,
			StatusCode: http.StatusBadGateway,
		}
	}

	if errors.Is(err, provider.ErrInvalidResponse) {
		return jobs.Failure{
			Message:    MsgInvalidResponse,
			Details:    err.Error(),
			StatusCode: http.StatusBadGateway,
		}
	}

	if errors.Is(err, provider.ErrInvalidJSON) {
		f := jobs.Failure{
			Message:    MsgInvalidJSON,
			Details:    err.Error(),
			StatusCode: http.StatusBadGateway,
		}
		var parseErr *formatting.ParseError
		if errors.As(err, &parseErr) {
			raw := parseErr.Raw
			if raw == "" {
				raw = parseErr.Cleaned
			}
			if raw != "" {
				f.RawOutput = &raw
			}
		}
		return f
	}

	var valErr *summaries.ValidationError
	if errors.As(err, &valErr) {
		return jobs.Failure{
			Message:    MsgInvalidJSON,
			Details:    valErr.Reason,
			StatusCode: http.StatusBadGateway,
		}
	}

	return jobs.Failure{
		Message:    MsgInternal,
		Details:    err.Error(),
		StatusCode: http.StatusInternalServerError,
	}
}
