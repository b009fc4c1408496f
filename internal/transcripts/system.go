// Package transcripts accepts uploaded transcript PDFs and hands each one to
// a tracked background pipeline run.
package transcripts

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/concall/internal/jobs"
	"github.com/JaimeStill/concall/internal/workflow"
	"github.com/JaimeStill/concall/pkg/lifecycle"
)

// Upload is one accepted transcript PDF.
type Upload struct {
	RequestID string
	Filename  string
	Data      []byte
	PageCount int
}

// System defines the transcript intake surface.
type System interface {
	Handler(maxUploadSize int64) *Handler
	// Submit queues a job for upload and starts its pipeline in the background.
	Submit(upload Upload) jobs.Job
}

type system struct {
	rt     *workflow.Runtime
	lc     *lifecycle.Coordinator
	logger *slog.Logger
}

// New creates a transcript System that runs pipelines as tasks tracked by lc.
func New(rt *workflow.Runtime, lc *lifecycle.Coordinator, logger *slog.Logger) System {
	return &system{
		rt:     rt,
		lc:     lc,
		logger: logger.With("system", "transcripts"),
	}
}

func (s *system) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, maxUploadSize)
}

func (s *system) Submit(upload Upload) jobs.Job {
	job := s.rt.Jobs.Create(upload.RequestID)

	in := workflow.Input{
		JobID:     job.ID,
		RequestID: upload.RequestID,
		PDF:       upload.Data,
		PageCount: upload.PageCount,
	}
	s.lc.Go(func(ctx context.Context) {
		workflow.Execute(ctx, s.rt, in)
	})

	s.logger.Info("job queued",
		"job_id", job.ID,
		"request_id", upload.RequestID,
		"filename", upload.Filename,
		"bytes", len(upload.Data),
		"pages", upload.PageCount,
	)
	return job
}
