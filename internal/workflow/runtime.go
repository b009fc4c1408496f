package workflow

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/concall/internal/jobs"
	"github.com/JaimeStill/concall/internal/summaries"
	"github.com/JaimeStill/concall/pkg/extract"
)

// Extractor pulls usable text out of a PDF.
type Extractor interface {
	Extract(ctx context.Context, pdf []byte) (extract.Result, error)
}

// Summarizer asks the LLM provider for a raw summary payload.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (any, error)
}

// Runtime bundles the dependencies that the pipeline requires.
// It is constructed by higher-level composition code from Infrastructure and Domain systems.
type Runtime struct {
	Extractor  Extractor
	Provider   Summarizer
	Normalizer *summaries.Normalizer
	Summaries  summaries.System
	Jobs       jobs.System
	MaxChars   int
	Logger     *slog.Logger
}
