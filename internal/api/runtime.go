package api

import (
	"github.com/crobbins327/histocartography/internal/config"
	"github.com/crobbins327/histocartography/internal/infrastructure"
	"github.com/crobbins327/histocartography/pkg/pagination"
)

// Runtime is what the API domain systems are built from: the shared
// infrastructure with an api-scoped logger plus the settings they read.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Explain    config.ExplainConfig
}

func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")
	return &Runtime{Infrastructure: &scoped, Pagination: cfg.API.Pagination, Explain: cfg.Explain}
}
