package metaexplain

import (
	"fmt"
	"io"

	"github.com/crobbins327/histocartography/internal/explanations"
)

// New decodes records of the given variant and builds its meta-explanation.
func New(variant explanations.Variant, cfg RunConfig, records io.Reader, opts Options) (Explainer, error) {
	if _, err := explanations.ParseVariant(string(variant)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(variant); err != nil {
		return nil, err
	}

	switch variant {
	case explanations.VariantGraph:
		recs, err := explanations.DecodeGraphRecords(records)
		if err != nil {
			return nil, err
		}
		g, err := NewGraph(cfg, recs, opts)
		if err != nil {
			return nil, err
		}
		return g, nil
	case explanations.VariantImage:
		recs, err := explanations.DecodeImageRecords(records)
		if err != nil {
			return nil, err
		}
		img, err := NewImage(cfg, recs, opts)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
}

// SavePath resolves the directory a run of variant with cfg writes to,
// without reading any records.
func SavePath(variant explanations.Variant, cfg RunConfig, opts Options) (string, error) {
	if err := cfg.Validate(variant); err != nil {
		return "", err
	}

	opts = opts.withDefaults()
	n, err := opts.Classes.NumberOfClasses(cfg.ModelParams.ClassSplit)
	if err != nil {
		return "", fmt.Errorf("resolve class split: %w", err)
	}

	switch variant {
	case explanations.VariantGraph:
		return scenarioDir(opts.OutputRoot, n, cfg.ExplanationType, "gnn", graphType(cfg.ModelParams.ModelType))
	case explanations.VariantImage:
		return scenarioDir(opts.OutputRoot, n, cfg.ExplanationType, "cnn")
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
}

// ReadReport loads the report stored in dir.
func ReadReport(dir string) (*Report, error) {
	return readReport(dir)
}
