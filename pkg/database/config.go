package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/crobbins327/histocartography/pkg/envconf"
)

// Config holds PostgreSQL connection and pool parameters.
type Config struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env names the variables overriding each Config field.
type Env struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

// ConnMaxLifetimeDuration parses ConnMaxLifetime; call after Finalize.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// ConnTimeoutDuration parses ConnTimeout; call after Finalize.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Dsn returns the keyword/value connection string pgx accepts.
func (c *Config) Dsn() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode,
	)
}

// URL returns the postgres:// form golang-migrate expects.
func (c *Config) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// Finalize fills defaults, applies env and validates.
func (c *Config) Finalize(env *Env) error {
	envconf.Default(&c.Host, "localhost")
	envconf.Default(&c.Port, 5432)
	envconf.Default(&c.Name, "histocartography")
	envconf.Default(&c.User, "histocartography")
	envconf.Default(&c.SSLMode, "disable")
	envconf.Default(&c.MaxOpenConns, 25)
	envconf.Default(&c.MaxIdleConns, 5)
	envconf.Default(&c.ConnMaxLifetime, "15m")
	envconf.Default(&c.ConnTimeout, "5s")

	if env != nil {
		var o envconf.Overrides
		o.String(env.Host, &c.Host)
		o.Int(env.Port, &c.Port)
		o.String(env.Name, &c.Name)
		o.String(env.User, &c.User)
		o.String(env.Password, &c.Password)
		o.String(env.SSLMode, &c.SSLMode)
		o.Int(env.MaxOpenConns, &c.MaxOpenConns)
		o.Int(env.MaxIdleConns, &c.MaxIdleConns)
		o.String(env.ConnMaxLifetime, &c.ConnMaxLifetime)
		o.String(env.ConnTimeout, &c.ConnTimeout)
		if err := o.Err(); err != nil {
			return err
		}
	}

	return errors.Join(
		envconf.Duration("conn_max_lifetime", c.ConnMaxLifetime),
		envconf.Duration("conn_timeout", c.ConnTimeout),
	)
}

// Merge applies the non-zero fields of overlay.
func (c *Config) Merge(overlay *Config) {
	envconf.Overlay(&c.Host, overlay.Host)
	envconf.Overlay(&c.Port, overlay.Port)
	envconf.Overlay(&c.Name, overlay.Name)
	envconf.Overlay(&c.User, overlay.User)
	envconf.Overlay(&c.Password, overlay.Password)
	envconf.Overlay(&c.SSLMode, overlay.SSLMode)
	envconf.Overlay(&c.MaxOpenConns, overlay.MaxOpenConns)
	envconf.Overlay(&c.MaxIdleConns, overlay.MaxIdleConns)
	envconf.Overlay(&c.ConnMaxLifetime, overlay.ConnMaxLifetime)
	envconf.Overlay(&c.ConnTimeout, overlay.ConnTimeout)
}
