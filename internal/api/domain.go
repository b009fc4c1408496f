package api

import (
	"github.com/JaimeStill/concall/internal/jobs"
	"github.com/JaimeStill/concall/internal/summaries"
	"github.com/JaimeStill/concall/internal/transcripts"
	"github.com/JaimeStill/concall/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Jobs        jobs.System
	Summaries   summaries.System
	Transcripts transcripts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	var opts []summaries.Option
	if runtime.Storage != nil {
		opts = append(opts, summaries.WithArchive(
			summaries.NewBlobArchive(runtime.Storage, runtime.Archive.Storage),
		))
	}

	summariesSystem := summaries.New(runtime.Pipeline.SummaryCapacity, runtime.Logger, opts...)
	jobsSystem := jobs.New(runtime.Pipeline.JobCapacity, runtime.Logger)

	pipeline := &workflow.Runtime{
		Extractor:  runtime.Extractor,
		Provider:   runtime.Provider,
		Normalizer: runtime.Normalizer,
		Summaries:  summariesSystem,
		Jobs:       jobsSystem,
		MaxChars:   runtime.Pipeline.MaxChars,
		Logger:     runtime.Logger,
	}

	return &Domain{
		Jobs:        jobsSystem,
		Summaries:   summariesSystem,
		Transcripts: transcripts.New(pipeline, runtime.Lifecycle, runtime.Logger),
	}
}
