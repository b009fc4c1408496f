// Package workflow runs the transcript pipeline: extract, clean, summarize,
// normalize, and store. Execute drives a job through its state machine;
// Run performs the pipeline without job tracking.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/concall/internal/jobs"
	"github.com/JaimeStill/concall/internal/summaries"
	"github.com/JaimeStill/concall/pkg/textclean"
)

// Input is one uploaded transcript.
type Input struct {
	JobID     uuid.UUID
	RequestID string
	PDF       []byte
	PageCount int
}

// Run extracts, cleans, summarizes, and normalizes the transcript, then saves
// the summary. Each step completes before the next begins.
func Run(ctx context.Context, rt *Runtime, in Input) (jobs.Result, error) {
	extracted, err := rt.Extractor.Extract(ctx, in.PDF)
	if err != nil {
		return jobs.Result{}, fmt.Errorf("extract: %w", err)
	}

	cleaned := textclean.Clean(extracted.Text, rt.MaxChars)

	payload, err := rt.Provider.Summarize(ctx, cleaned.Text)
	if err != nil {
		return jobs.Result{}, fmt.Errorf("summarize: %w", err)
	}

	normalize := summaries.Normalize
	if rt.Normalizer != nil {
		normalize = rt.Normalizer.Normalize
	}

	summary, err := normalize(payload)
	if err != nil {
		return jobs.Result{}, fmt.Errorf("normalize: %w", err)
	}

	rec := rt.Summaries.Save(ctx, summary, summaries.Meta{
		RequestID:         in.RequestID,
		OriginalChars:     cleaned.OriginalChars,
		CleanedChars:      cleaned.CleanedChars,
		MaxChars:          cleaned.MaxChars,
		WasTruncated:      cleaned.Truncated,
		ExtractionMethod:  extracted.Method,
		OCRPagesProcessed: extracted.PagesProcessed,
		PageCount:         in.PageCount,
	})

	return jobs.Result{Summary: rec.Summary, Meta: rec.Meta}, nil
}

// Execute moves the job to processing, runs the pipeline, and records the
// outcome. The job always reaches a terminal state, including when the
// pipeline panics.
func Execute(ctx context.Context, rt *Runtime, in Input) {
	start := time.Now()
	logger := rt.Logger.With("job_id", in.JobID, "request_id", in.RequestID)

	fail := func(err error) {
		failure := Classify(err)
		if _, ferr := rt.Jobs.Fail(in.JobID, failure); ferr != nil {
			logger.Error("job fail transition rejected", "error", ferr)
		}
		logger.Error("summary_failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
			"status_code", failure.StatusCode,
		)
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("pipeline panic: %v", r))
		}
	}()

	if _, err := rt.Jobs.Start(in.JobID); err != nil {
		logger.Error("job start transition rejected", "error", err)
		return
	}

	result, err := Run(ctx, rt, in)
	if err != nil {
		fail(err)
		return
	}

	if _, err := rt.Jobs.Complete(in.JobID, result); err != nil {
		logger.Error("job complete transition rejected", "error", err)
		return
	}

	logger.Info("summary_generated",
		"duration_ms", time.Since(start).Milliseconds(),
		"extraction", result.Meta.ExtractionMethod,
		"summary_id", result.Meta.SummaryID,
	)
}
