package infrastructure_test

import (
	"testing"

	"github.com/crobbins327/histocartography/internal/config"
	"github.com/crobbins327/histocartography/internal/infrastructure"
	"github.com/crobbins327/histocartography/pkg/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Storage: storage.Config{Root: t.TempDir()},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
	if err := cfg.Database.Finalize(nil); err != nil {
		t.Fatalf("database finalize: %v", err)
	}
	if err := cfg.Storage.Finalize(nil); err != nil {
		t.Fatalf("storage finalize: %v", err)
	}
	return cfg
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "filesystem storage"},
		{
			name: "malformed azure connection string",
			mutate: func(c *config.Config) {
				c.Storage.Provider = storage.ProviderAzure
				c.Storage.ConnectionString = "not-a-connection-string"
			},
			wantErr: true,
		},
		{
			name:    "unknown storage provider",
			mutate:  func(c *config.Config) { c.Storage.Provider = "s3" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			infra, err := infrastructure.New(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("New() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer infra.Database.Connection().Close()

			if infra.Lifecycle == nil || infra.Logger == nil || infra.Metrics == nil || infra.Storage == nil {
				t.Errorf("incomplete infrastructure: %+v", infra)
			}
		})
	}
}

func TestNewRegistersPoolStats(t *testing.T) {
	infra, err := infrastructure.New(testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Database.Connection().Close()

	families, err := infra.Metrics.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	names := make(map[string]float64)
	for _, f := range families {
		if m := f.GetMetric(); len(m) > 0 && m[0].GetGauge() != nil {
			names[f.GetName()] = m[0].GetGauge().GetValue()
		}
	}
	if got, ok := names["go_sql_max_open_connections"]; !ok || got != 25 {
		t.Errorf("go_sql_max_open_connections = %v (registered %v), want 25", got, ok)
	}
	if _, ok := names["go_goroutines"]; !ok {
		t.Error("runtime collector not registered")
	}
}
