package config

import (
	"fmt"

	"github.com/crobbins327/histocartography/pkg/envconf"
)

// ExplainConfig controls meta-explanation runs for both the CLI and the
// service.
type ExplainConfig struct {
	OutputRoot        string  `toml:"output_root"`
	ExtractPerLevel   bool    `toml:"extract_per_level"`
	PlotSize          float64 `toml:"plot_size"`
	UploadConcurrency int     `toml:"upload_concurrency"`
}

func (c *ExplainConfig) Finalize() error {
	envconf.Default(&c.OutputRoot, "output/explainability")
	envconf.Default(&c.PlotSize, 6)
	envconf.Default(&c.UploadConcurrency, 4)

	var o envconf.Overrides
	o.String("HISTO_EXPLAIN_OUTPUT_ROOT", &c.OutputRoot)
	o.Bool("HISTO_EXPLAIN_EXTRACT_PER_LEVEL", &c.ExtractPerLevel)
	o.Float("HISTO_EXPLAIN_PLOT_SIZE", &c.PlotSize)
	o.Int("HISTO_EXPLAIN_UPLOAD_CONCURRENCY", &c.UploadConcurrency)
	if err := o.Err(); err != nil {
		return err
	}

	switch {
	case c.PlotSize <= 0:
		return fmt.Errorf("invalid plot_size: %v", c.PlotSize)
	case c.UploadConcurrency < 1:
		return fmt.Errorf("invalid upload_concurrency: %d", c.UploadConcurrency)
	}
	return nil
}

// Merge applies overlay. ExtractPerLevel can only be switched on.
func (c *ExplainConfig) Merge(overlay *ExplainConfig) {
	envconf.Overlay(&c.OutputRoot, overlay.OutputRoot)
	envconf.Overlay(&c.ExtractPerLevel, overlay.ExtractPerLevel)
	envconf.Overlay(&c.PlotSize, overlay.PlotSize)
	envconf.Overlay(&c.UploadConcurrency, overlay.UploadConcurrency)
}
