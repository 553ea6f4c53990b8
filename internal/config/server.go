package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/crobbins327/histocartography/pkg/envconf"
)

// ServerConfig is the HTTP listener.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	ReadTimeout  string `toml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReadTimeoutDuration parses ReadTimeout; call after Finalize.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

// WriteTimeoutDuration parses WriteTimeout. Runs are asynchronous, so the
// long default only serves large record set uploads.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

func (c *ServerConfig) Finalize() error {
	envconf.Default(&c.Host, "0.0.0.0")
	envconf.Default(&c.Port, 8080)
	envconf.Default(&c.ReadTimeout, "1m")
	envconf.Default(&c.WriteTimeout, "15m")

	var o envconf.Overrides
	o.String("HISTO_SERVER_HOST", &c.Host)
	o.Int("HISTO_SERVER_PORT", &c.Port)
	o.String("HISTO_SERVER_READ_TIMEOUT", &c.ReadTimeout)
	o.String("HISTO_SERVER_WRITE_TIMEOUT", &c.WriteTimeout)
	if err := o.Err(); err != nil {
		return err
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return errors.Join(
		envconf.Duration("read_timeout", c.ReadTimeout),
		envconf.Duration("write_timeout", c.WriteTimeout),
	)
}

func (c *ServerConfig) Merge(overlay *ServerConfig) {
	envconf.Overlay(&c.Host, overlay.Host)
	envconf.Overlay(&c.Port, overlay.Port)
	envconf.Overlay(&c.ReadTimeout, overlay.ReadTimeout)
	envconf.Overlay(&c.WriteTimeout, overlay.WriteTimeout)
}
