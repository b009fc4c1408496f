package jobs

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/concall/internal/summaries"
	"github.com/JaimeStill/concall/pkg/handlers"
	"github.com/JaimeStill/concall/pkg/routes"
)

// Handler provides the job polling endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "jobs"),
	}
}

// Routes returns the route group definition for job endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/job",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// PendingResponse is returned while a job is queued or processing.
type PendingResponse struct {
	Status    Status `json:"status"`
	RequestID string `json:"request_id"`
}

// CompletedResponse is returned for a completed job.
type CompletedResponse struct {
	Status  Status            `json:"status"`
	Summary summaries.Summary `json:"summary"`
	Meta    summaries.Meta    `json:"meta"`
}

// FailedResponse is returned for a failed job with the failure's status code.
type FailedResponse struct {
	Status    Status  `json:"status"`
	Error     string  `json:"error"`
	Details   any     `json:"details"`
	RawOutput *string `json:"raw_output"`
	RequestID string  `json:"request_id"`
}

// Find reports the current state of a job by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondMessage(w, h.logger, http.StatusNotFound, "Job not found", err)
		return
	}

	job, err := h.sys.Find(id)
	if err != nil {
		handlers.RespondMessage(w, h.logger, MapHTTPStatus(err), "Job not found", err)
		return
	}

	status, body := Response(job)
	handlers.RespondJSON(w, status, body)
}

// Response returns the HTTP status and body that describe job.
func Response(job Job) (int, any) {
	switch job.Status {
	case StatusCompleted:
		body := CompletedResponse{Status: job.Status}
		if job.Result != nil {
			body.Summary = job.Result.Summary
			body.Meta = job.Result.Meta
		}
		return http.StatusOK, body

	case StatusFailed:
		status := http.StatusBadGateway
		body := FailedResponse{
			Status:    job.Status,
			Error:     "Processing failed",
			RequestID: job.RequestID,
		}
		if f := job.Error; f != nil {
			if f.StatusCode != 0 {
				status = f.StatusCode
			}
			if f.Message != "" {
				body.Error = f.Message
			}
			body.Details = f.Details
			body.RawOutput = f.RawOutput
		}
		return status, body

	default:
		return http.StatusOK, PendingResponse{Status: job.Status, RequestID: job.RequestID}
	}
}
