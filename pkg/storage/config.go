package storage

import (
	"errors"
	"fmt"

	"github.com/crobbins327/histocartography/pkg/envconf"
)

// Storage providers.
const (
	ProviderAzure      = "azure"
	ProviderFilesystem = "filesystem"
)

// Config selects the blob backend for uploaded records and run artifacts.
// The azure provider authenticates with ConnectionString when set,
// otherwise with the default Azure credential chain against AccountURL.
type Config struct {
	Provider         string `toml:"provider" json:"provider"`
	ContainerName    string `toml:"container_name" json:"container_name"`
	ConnectionString string `toml:"connection_string" json:"connection_string"`
	AccountURL       string `toml:"account_url" json:"account_url"`
	Root             string `toml:"root" json:"root"`
	MaxListSize      int32  `toml:"max_list_size" json:"max_list_size"`
}

// Env names the variables overriding each Config field.
type Env struct {
	Provider         string
	ContainerName    string
	ConnectionString string
	AccountURL       string
	Root             string
	MaxListSize      string
}

// Finalize fills defaults, applies env, clamps MaxListSize to MaxListCap
// and validates the provider settings.
func (c *Config) Finalize(env *Env) error {
	envconf.Default(&c.Provider, ProviderFilesystem)
	envconf.Default(&c.ContainerName, "histocartography")
	envconf.Default(&c.Root, ".data/storage")
	envconf.Default(&c.MaxListSize, 50)

	if env != nil {
		var o envconf.Overrides
		o.String(env.Provider, &c.Provider)
		o.String(env.ContainerName, &c.ContainerName)
		o.String(env.ConnectionString, &c.ConnectionString)
		o.String(env.AccountURL, &c.AccountURL)
		o.String(env.Root, &c.Root)
		o.Int32(env.MaxListSize, &c.MaxListSize)
		if err := o.Err(); err != nil {
			return err
		}
	}

	if c.MaxListSize < 1 {
		return errors.New("max_list_size must be positive")
	}
	c.MaxListSize = min(c.MaxListSize, MaxListCap)

	switch c.Provider {
	case ProviderAzure:
		if c.ConnectionString == "" && c.AccountURL == "" {
			return errors.New("connection_string or account_url required")
		}
	case ProviderFilesystem:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}

// Merge applies the non-zero fields of overlay.
func (c *Config) Merge(overlay *Config) {
	envconf.Overlay(&c.Provider, overlay.Provider)
	envconf.Overlay(&c.ContainerName, overlay.ContainerName)
	envconf.Overlay(&c.ConnectionString, overlay.ConnectionString)
	envconf.Overlay(&c.AccountURL, overlay.AccountURL)
	envconf.Overlay(&c.Root, overlay.Root)
	envconf.Overlay(&c.MaxListSize, overlay.MaxListSize)
}
