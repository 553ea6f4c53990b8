package metaexplain

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crobbins327/histocartography/internal/explanations"
)

// ModelParams describes the model whose explanations are aggregated.
type ModelParams struct {
	ClassSplit string `json:"class_split" yaml:"class_split"`
	ModelType  string `json:"model_type,omitempty" yaml:"model_type,omitempty"`
	NumLayers  *int   `json:"num_layers,omitempty" yaml:"num_layers,omitempty"`
}

// RunConfig is the run configuration echoed into every report.
type RunConfig struct {
	ModelParams     ModelParams `json:"model_params" yaml:"model_params"`
	ExplanationType string      `json:"explanation_type" yaml:"explanation_type"`
	Dataset         string      `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	ModelPath       string      `json:"model_path,omitempty" yaml:"model_path,omitempty"`
}

// Validate checks the fields the given variant depends on.
func (c RunConfig) Validate(variant explanations.Variant) error {
	if c.ModelParams.ClassSplit == "" {
		return fmt.Errorf("%w: model_params.class_split", ErrMissingKey)
	}
	if c.ExplanationType == "" {
		return fmt.Errorf("%w: explanation_type", ErrMissingKey)
	}
	if _, ok := explanations.SaveSubdir(c.ExplanationType); !ok {
		return fmt.Errorf("%w: explanation_type %q has no output directory", ErrMissingKey, c.ExplanationType)
	}
	if variant == explanations.VariantGraph && c.ModelParams.ModelType == "" {
		return fmt.Errorf("%w: model_params.model_type", ErrMissingKey)
	}
	return nil
}

// DecodeRunConfig reads a YAML run configuration.
func DecodeRunConfig(r io.Reader) (RunConfig, error) {
	var cfg RunConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return RunConfig{}, fmt.Errorf("decode run config: %w", err)
	}
	return cfg, nil
}

// LoadRunConfig reads a YAML run configuration file.
func LoadRunConfig(path string) (RunConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("open run config: %w", err)
	}
	defer f.Close()
	return DecodeRunConfig(f)
}
