// Package pagination provides types and utilities for paginated data queries.
package pagination

import (
	"errors"

	"github.com/crobbins327/histocartography/pkg/envconf"
)

// Config bounds the page sizes list endpoints accept.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv names the variables overriding each Config field.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize fills defaults, applies env and validates.
func (c *Config) Finalize(env *ConfigEnv) error {
	envconf.Default(&c.DefaultPageSize, 20)
	envconf.Default(&c.MaxPageSize, 100)

	if env != nil {
		var o envconf.Overrides
		o.Int(env.DefaultPageSize, &c.DefaultPageSize)
		o.Int(env.MaxPageSize, &c.MaxPageSize)
		if err := o.Err(); err != nil {
			return err
		}
	}

	switch {
	case c.DefaultPageSize < 1 || c.MaxPageSize < 1:
		return errors.New("page sizes must be positive")
	case c.DefaultPageSize > c.MaxPageSize:
		return errors.New("default_page_size cannot exceed max_page_size")
	}
	return nil
}

// Merge applies the non-zero fields of overlay.
func (c *Config) Merge(overlay *Config) {
	envconf.Overlay(&c.DefaultPageSize, overlay.DefaultPageSize)
	envconf.Overlay(&c.MaxPageSize, overlay.MaxPageSize)
}
