package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crobbins327/histocartography/internal/config"
	"github.com/crobbins327/histocartography/internal/infrastructure"
	"github.com/crobbins327/histocartography/pkg/storage"
)

func TestRouterHealthEndpoints(t *testing.T) {
	cfg := &config.Config{
		Storage: storage.Config{Root: t.TempDir()},
		Explain: config.ExplainConfig{OutputRoot: t.TempDir()},
		Version: "0.1.0",
	}
	for name, finalize := range map[string]func() error{
		"database": func() error { return cfg.Database.Finalize(nil) },
		"storage":  func() error { return cfg.Storage.Finalize(nil) },
		"api":      cfg.API.Finalize,
		"logging":  cfg.Logging.Finalize,
		"explain":  cfg.Explain.Finalize,
	} {
		if err := finalize(); err != nil {
			t.Fatalf("finalize %s: %v", name, err)
		}
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	defer infra.Database.Connection().Close()

	router, err := newRouter(cfg, infra)
	if err != nil {
		t.Fatalf("newRouter() error = %v", err)
	}

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/readyz", http.StatusServiceUnavailable, "starting"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

		var body status
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", tt.path, err)
		}
		if rec.Code != tt.wantStatus || body.Status != tt.wantBody {
			t.Errorf("%s = %d %q, want %d %q", tt.path, rec.Code, body.Status, tt.wantStatus, tt.wantBody)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics = %d, want 200", rec.Code)
	}
}
