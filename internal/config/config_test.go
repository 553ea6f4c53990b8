package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/crobbins327/histocartography/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"

[database]
host = "localhost"
port = 5432
name = "histo"
user = "histo"
password = "histo"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
provider = "azure"
container_name = "reports"
connection_string = "DefaultEndpointsProtocol=http;AccountName=histostore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/histostore;"

[api]
base_path = "/api"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50

[logging]
level = "debug"
format = "json"

[explain]
output_root = "/data/explainability"
plot_size = 4.5
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[explain]
extract_per_level = true
`

// chdirWith writes files into a fresh working directory.
func chdirWith(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	t.Chdir(dir)
}

func loadBase(t *testing.T) *config.Config {
	t.Helper()
	chdirWith(t, map[string]string{config.BaseConfigFile: baseConfig})
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := loadBase(t)

	wantServer := config.ServerConfig{Host: "0.0.0.0", Port: 8080, ReadTimeout: "1m", WriteTimeout: "15m"}
	if diff := cmp.Diff(wantServer, cfg.Server); diff != "" {
		t.Errorf("server mismatch (-want +got):\n%s", diff)
	}

	wantExplain := config.ExplainConfig{OutputRoot: "/data/explainability", PlotSize: 4.5, UploadConcurrency: 4}
	if diff := cmp.Diff(wantExplain, cfg.Explain); diff != "" {
		t.Errorf("explain mismatch (-want +got):\n%s", diff)
	}

	if cfg.Storage.ContainerName != "reports" || cfg.API.Pagination.DefaultPageSize != 25 || cfg.Logging.Format != "json" {
		t.Errorf("storage/pagination/logging not read: %+v %+v %+v", cfg.Storage, cfg.API.Pagination, cfg.Logging)
	}
	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("ShutdownTimeoutDuration() = %v, want 30s", d)
	}
	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("Addr() = %s", addr)
	}
}

func TestLoadLayers(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		env   map[string]string
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name:  "overlay over base",
			files: map[string]string{config.BaseConfigFile: baseConfig, "config.staging.toml": overlayConfig},
			env:   map[string]string{"HISTO_ENV": "staging"},
			check: func(t *testing.T, cfg *config.Config) {
				got := []any{cfg.Server.Port, cfg.Database.Host, cfg.Database.Port, cfg.Explain.ExtractPerLevel}
				if diff := cmp.Diff([]any{9090, "prodhost", 5432, true}, got); diff != "" {
					t.Errorf("layered values mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:  "overlay without base",
			files: map[string]string{"config.staging.toml": overlayConfig},
			env:   map[string]string{"HISTO_ENV": "staging"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Server.Port != 9090 || cfg.Database.Name != "histocartography" {
					t.Errorf("port/name = %d/%s, want 9090/histocartography", cfg.Server.Port, cfg.Database.Name)
				}
			},
		},
		{
			name:  "missing overlay is skipped",
			files: map[string]string{config.BaseConfigFile: baseConfig},
			env:   map[string]string{"HISTO_ENV": "production"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Server.Port != 8080 || cfg.Env() != "production" {
					t.Errorf("port/env = %d/%s", cfg.Server.Port, cfg.Env())
				}
			},
		},
		{
			name:  "env variables win",
			files: map[string]string{config.BaseConfigFile: baseConfig},
			env: map[string]string{
				"HISTO_VERSION":             "2.0.0",
				"HISTO_SERVER_PORT":         "3000",
				"HISTO_EXPLAIN_OUTPUT_ROOT": "/tmp/out",
				"HISTO_LOG_LEVEL":           "warn",
			},
			check: func(t *testing.T, cfg *config.Config) {
				got := []any{cfg.Version, cfg.Server.Port, cfg.Explain.OutputRoot, cfg.Logging.SlogLevel()}
				if diff := cmp.Diff([]any{"2.0.0", 3000, "/tmp/out", slog.LevelWarn}, got); diff != "" {
					t.Errorf("overridden values mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "defaults only",
			check: func(t *testing.T, cfg *config.Config) {
				got := []any{cfg.Server.Port, cfg.Database.Name, cfg.Storage.Provider, cfg.Explain.OutputRoot, cfg.Explain.UploadConcurrency, cfg.API.OpenAPI.Title, cfg.Env()}
				want := []any{8080, "histocartography", "filesystem", "output/explainability", 4, "Histocartography API", "local"}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("defaults mismatch (-want +got):\n%s", diff)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			chdirWith(t, tt.files)

			cfg, err := config.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadRejectsUnparsableEnv(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"server port", "HISTO_SERVER_PORT", "http"},
		{"database pool", "HISTO_DB_MAX_OPEN_CONNS", "many"},
		{"extract flag", "HISTO_EXPLAIN_EXTRACT_PER_LEVEL", "perhaps"},
		{"plot size", "HISTO_EXPLAIN_PLOT_SIZE", "big"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.key)
			}
		})
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"megabytes", "50MB", 50 * 1024 * 1024},
		{"gigabytes", "1GB", 1024 * 1024 * 1024},
		{"lowercase with space", "512 kb", 512 * 1024},
		{"bare bytes", "2048", 2048},
		{"fractional", "1.5KB", 1536},
		{"invalid falls back to 50MB", "bad", 50 * 1024 * 1024},
		{"unknown unit falls back to 50MB", "5XB", 50 * 1024 * 1024},
		{"empty falls back to 50MB", "", 50 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxUploadSize: tt.size}
			if got := cfg.MaxUploadSizeBytes(); got != tt.want {
				t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "invalid port",
			config:  "[server]\nport = 99999\n",
			wantErr: "invalid port",
		},
		{
			name:    "invalid read_timeout",
			config:  "[server]\nread_timeout = \"bad\"\n",
			wantErr: "invalid read_timeout",
		},
		{
			name:    "invalid log format",
			config:  "[logging]\nformat = \"xml\"\n",
			wantErr: "invalid format",
		},
		{
			name:    "invalid log level",
			config:  "[logging]\nlevel = \"loud\"\n",
			wantErr: "invalid level",
		},
		{
			name:    "invalid plot size",
			config:  "[explain]\nplot_size = -1.0\n",
			wantErr: "invalid plot_size",
		},
		{
			name:    "invalid max upload size",
			config:  "[api]\nmax_upload_size = \"-5MB\"\n",
			wantErr: "invalid max_upload_size",
		},
		{
			name:    "unknown storage provider",
			config:  "[storage]\nprovider = \"s3\"\n",
			wantErr: "unknown provider",
		},
		{
			name:    "malformed toml",
			config:  "server = {",
			wantErr: "config.toml: parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirWith(t, map[string]string{config.BaseConfigFile: tt.config})

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoggingNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.LoggingConfig{Level: "warn", Format: "json"}

	logger := cfg.NewLogger(&buf)
	logger.Info("dropped")
	logger.Warn("kept", "run", 1)

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, `"msg":"kept"`) {
		t.Errorf("json record missing: %s", out)
	}
}
