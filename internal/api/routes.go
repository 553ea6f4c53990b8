package api

import (
	"net/http"

	"github.com/crobbins327/histocartography/internal/config"
	"github.com/crobbins327/histocartography/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.RecordSets.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.MetaExplanations.Handler().Routes(),
		newStorageHandler(
			runtime.Storage,
			runtime.Logger,
			cfg.Storage.MaxListSize,
		).routes(),
	}

	serveSpec, err := buildSpec(cfg, groups).Handler()
	if err != nil {
		return err
	}

	routes.Register(mux, groups...)
	mux.HandleFunc("GET /openapi.json", serveSpec)
	return nil
}
