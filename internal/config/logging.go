package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/crobbins327/histocartography/pkg/envconf"
)

// LoggingConfig selects the slog level and handler format.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func (c *LoggingConfig) Finalize() error {
	envconf.Default(&c.Level, "info")
	envconf.Default(&c.Format, "text")

	var o envconf.Overrides
	o.String("HISTO_LOG_LEVEL", &c.Level)
	o.String("HISTO_LOG_FORMAT", &c.Format)
	if err := o.Err(); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid level %q", c.Level)
	}
	c.Format = strings.ToLower(c.Format)
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid format %q: must be text or json", c.Format)
	}
	return nil
}

func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	envconf.Overlay(&c.Level, overlay.Level)
	envconf.Overlay(&c.Format, overlay.Format)
}

// SlogLevel returns Level as a slog.Level, info when unparsable.
func (c *LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger builds a logger writing to w, or stderr when w is nil.
func (c *LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
