// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/concall/internal/config"
	"github.com/JaimeStill/concall/internal/infrastructure"
	"github.com/JaimeStill/concall/pkg/middleware"
	"github.com/JaimeStill/concall/pkg/module"
)

// Module pairs the mounted API module with the domain systems behind it so
// sibling modules can share them.
type Module struct {
	*module.Module
	Domain *Domain
}

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*Module, error) {
	runtime, err := NewRuntime(cfg, infra)
	if err != nil {
		return nil, err
	}
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime.Logger)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.MaxJSONBody(cfg.API.MaxJSONSizeBytes()))
	m.Use(middleware.Logger(runtime.Logger))

	return &Module{Module: m, Domain: domain}, nil
}
