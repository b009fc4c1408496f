package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/concall/internal/config"
	"github.com/JaimeStill/concall/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	logger *slog.Logger,
) {
	patterns := routes.Register(
		mux,
		domain.Transcripts.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Jobs.Handler().Routes(),
	)
	logger.Debug("routes registered", "base_path", cfg.API.BasePath, "patterns", patterns)
}
