// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/crobbins327/histocartography/internal/config"
	"github.com/crobbins327/histocartography/internal/infrastructure"
	"github.com/crobbins327/histocartography/pkg/middleware"
	"github.com/crobbins327/histocartography/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(
		middleware.Logger(runtime.Infrastructure.Logger),
		middleware.CORS(&cfg.API.CORS),
		middleware.MaxBytes(cfg.API.MaxUploadSizeBytes()),
	)

	return m, nil
}
