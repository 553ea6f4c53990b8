package config

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/crobbins327/histocartography/pkg/database"
	"github.com/crobbins327/histocartography/pkg/envconf"
	"github.com/crobbins327/histocartography/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	// EnvHistoEnv selects the config.<env>.toml overlay.
	EnvHistoEnv = "HISTO_ENV"
)

var databaseEnv = &database.Env{
	Host:            "HISTO_DB_HOST",
	Port:            "HISTO_DB_PORT",
	Name:            "HISTO_DB_NAME",
	User:            "HISTO_DB_USER",
	Password:        "HISTO_DB_PASSWORD",
	SSLMode:         "HISTO_DB_SSL_MODE",
	MaxOpenConns:    "HISTO_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "HISTO_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "HISTO_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "HISTO_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "HISTO_STORAGE_PROVIDER",
	ContainerName:    "HISTO_STORAGE_CONTAINER_NAME",
	ConnectionString: "HISTO_STORAGE_CONNECTION_STRING",
	AccountURL:       "HISTO_STORAGE_ACCOUNT_URL",
	Root:             "HISTO_STORAGE_ROOT",
	MaxListSize:      "HISTO_STORAGE_MAX_LIST_SIZE",
}

// Config is the service configuration shared by the server, the migrate
// tool and the metaexplain CLI.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Logging         LoggingConfig   `toml:"logging"`
	Explain         ExplainConfig   `toml:"explain"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns HISTO_ENV, or "local".
func (c *Config) Env() string {
	return cmp.Or(os.Getenv(EnvHistoEnv), "local")
}

// ShutdownTimeoutDuration parses ShutdownTimeout; call after Load.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load merges config.toml and then config.<HISTO_ENV>.toml from the working
// directory, skipping either when absent, and finalizes the result. HISTO_*
// variables override both files.
func Load() (*Config, error) {
	layers := []string{BaseConfigFile}
	if env := os.Getenv(EnvHistoEnv); env != "" {
		layers = append(layers, fmt.Sprintf(OverlayConfigPattern, env))
	}

	cfg := &Config{}
	for _, path := range layers {
		layer, err := readFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Merge(layer)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return &cfg, nil
}

// Merge applies the non-zero fields of overlay to every section.
func (c *Config) Merge(overlay *Config) {
	envconf.Overlay(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	envconf.Overlay(&c.Version, overlay.Version)
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Logging.Merge(&overlay.Logging)
	c.Explain.Merge(&overlay.Explain)
}

type section struct {
	name     string
	finalize func() error
}

func (c *Config) finalize() error {
	envconf.Default(&c.ShutdownTimeout, "30s")
	envconf.Default(&c.Version, "0.1.0")

	var o envconf.Overrides
	o.String("HISTO_SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
	o.String("HISTO_VERSION", &c.Version)
	if err := o.Err(); err != nil {
		return err
	}
	if err := envconf.Duration("shutdown_timeout", c.ShutdownTimeout); err != nil {
		return err
	}

	sections := []section{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"logging", c.Logging.Finalize},
		{"explain", c.Explain.Finalize},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
