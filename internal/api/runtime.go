package api

import (
	"fmt"

	"github.com/JaimeStill/concall/internal/config"
	"github.com/JaimeStill/concall/internal/infrastructure"
	"github.com/JaimeStill/concall/internal/provider"
	"github.com/JaimeStill/concall/internal/summaries"
	"github.com/JaimeStill/concall/pkg/extract"
)

// Runtime extends Infrastructure with the pipeline collaborators built from configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Extractor  *extract.Extractor
	Provider   *provider.Client
	Normalizer *summaries.Normalizer
	Pipeline   config.PipelineConfig
	Archive    config.ArchiveConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "api")

	extractor, err := extract.New(cfg.Extract, logger)
	if err != nil {
		return nil, fmt.Errorf("extractor init failed: %w", err)
	}

	normalizer, err := summaries.NewNormalizer(cfg.Pipeline.GuidanceKeywords)
	if err != nil {
		return nil, fmt.Errorf("normalizer init failed: %w", err)
	}

	if cfg.Provider.APIKey == "" {
		logger.Warn("provider api key not set, summaries will fail until configured")
	}

	client := provider.New(&cfg.Provider, logger)
	logger.Info("provider configured", "model", client.Model())

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Storage:   infra.Storage,
		},
		Extractor:  extractor,
		Provider:   client,
		Normalizer: normalizer,
		Pipeline:   cfg.Pipeline,
		Archive:    cfg.Archive,
	}, nil
}
