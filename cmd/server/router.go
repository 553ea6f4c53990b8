package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crobbins327/histocartography/internal/api"
	"github.com/crobbins327/histocartography/internal/config"
	"github.com/crobbins327/histocartography/internal/infrastructure"
	"github.com/crobbins327/histocartography/pkg/handlers"
	"github.com/crobbins327/histocartography/pkg/module"
)

type status struct {
	Status string `json:"status"`
}

// newRouter mounts the API module next to the health and metrics endpoints.
func newRouter(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Router, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	router := module.NewRouter()
	router.Mount(apiModule)

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, status{"ok"})
	})

	// Ready once every startup hook succeeded and while the database answers.
	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case !infra.Lifecycle.Ready():
			handlers.RespondJSON(w, http.StatusServiceUnavailable, status{"starting"})
		case infra.Database.Ping(r.Context()) != nil:
			handlers.RespondJSON(w, http.StatusServiceUnavailable, status{"database unavailable"})
		default:
			handlers.RespondJSON(w, http.StatusOK, status{"ready"})
		}
	})

	router.HandleNative("GET /metrics",
		promhttp.HandlerFor(infra.Metrics, promhttp.HandlerOpts{Registry: infra.Metrics}).ServeHTTP)

	return router, nil
}
