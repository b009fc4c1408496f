package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/concall/internal/api"
	"github.com/JaimeStill/concall/internal/config"
	"github.com/JaimeStill/concall/internal/infrastructure"
	"github.com/JaimeStill/concall/pkg/middleware"
	"github.com/JaimeStill/concall/pkg/module"
	"github.com/JaimeStill/concall/pkg/routes"
)

type Modules struct {
	API       *api.Module
	Downloads *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	routes.Register(mux, apiModule.Domain.Summaries.Handler().Routes())

	downloads := module.New("/download-summary", mux)
	downloads.Use(middleware.CORS(&cfg.API.CORS))
	downloads.Use(middleware.Logger(infra.Logger.With("module", "downloads")))

	return &Modules{
		API:       apiModule,
		Downloads: downloads,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API.Module)
	router.Mount(m.Downloads)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	return router
}
