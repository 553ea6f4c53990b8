// Package metaexplain aggregates per-sample explanation records into a
// dataset-level meta-explanation: metric results per pruning level, a JSON
// report and, for graph models, 2-D projections of the latent space.
package metaexplain

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/crobbins327/histocartography/internal/classes"
	"github.com/crobbins327/histocartography/internal/evaluation"
	"github.com/crobbins327/histocartography/internal/explanations"
	"github.com/crobbins327/histocartography/internal/projection"
)

// DefaultOutputRoot is used when Options.OutputRoot is empty.
const DefaultOutputRoot = "output/explainability"

// Options configures a meta-explanation run.
type Options struct {
	OutputRoot string
	Registry   evaluation.Registry
	Classes    classes.Lookup
	Projector  projection.Projector
	Plotter    projection.Plotter
	Logger     *slog.Logger

	// ExtractPerLevel reads each pruning level from its own record data.
	// When false every level is populated from the full-graph level.
	ExtractPerLevel bool
}

func (o Options) withDefaults() Options {
	if o.OutputRoot == "" {
		o.OutputRoot = DefaultOutputRoot
	}
	if o.Registry == nil {
		o.Registry = evaluation.DefaultRegistry()
	}
	if o.Classes == nil {
		o.Classes = classes.BRACS{}
	}
	if o.Projector == nil {
		o.Projector = projection.PCA{}
	}
	if o.Plotter == nil {
		o.Plotter = projection.NewScatterPlotter("", 6)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Record is the per-sample input shared by every variant.
type Record interface {
	GroundTruth() int
}

// Explainer is a meta-explanation that can be evaluated and persisted.
type Explainer interface {
	Read() (*Report, error)
	Write() error
	Evaluate() (Output, error)
	Artifacts() []string
}

// Base holds the state common to every meta-explanation.
type Base[R Record] struct {
	Config     RunConfig
	Records    []R
	NumClasses int
	Labels     []int

	opts   Options
	logger *slog.Logger
}

// NewBase validates the inputs and extracts ground-truth labels in record order.
func NewBase[R Record](cfg RunConfig, records []R, opts Options) (*Base[R], error) {
	if len(records) == 0 {
		return nil, ErrNoExplanations
	}
	if cfg.ModelParams.ClassSplit == "" {
		return nil, fmt.Errorf("%w: model_params.class_split", ErrMissingKey)
	}

	opts = opts.withDefaults()

	n, err := opts.Classes.NumberOfClasses(cfg.ModelParams.ClassSplit)
	if err != nil {
		return nil, fmt.Errorf("resolve class split: %w", err)
	}

	labels := make([]int, len(records))
	for i, r := range records {
		labels[i] = r.GroundTruth()
	}

	return &Base[R]{
		Config:     cfg,
		Records:    records,
		NumClasses: n,
		Labels:     labels,
		opts:       opts,
		logger:     opts.Logger.With("system", "metaexplain"),
	}, nil
}

func (b *Base[R]) Read() (*Report, error) {
	return nil, ErrNotImplemented
}

func (b *Base[R]) Write() error {
	return ErrNotImplemented
}

func (b *Base[R]) Evaluate() (Output, error) {
	return nil, ErrNotImplemented
}

func (b *Base[R]) Artifacts() []string {
	return nil
}

func (b *Base[R]) saveDir(family string, segments ...string) (string, error) {
	return scenarioDir(b.opts.OutputRoot, b.NumClasses, b.Config.ExplanationType, family, segments...)
}

// scenarioDir joins the output root, the scenario segments and the explanation subdirectory.
func scenarioDir(root string, numClasses int, explanationType, family string, segments ...string) (string, error) {
	subdir, ok := explanations.SaveSubdir(explanationType)
	if !ok {
		return "", fmt.Errorf("%w: explanation_type %q has no output directory", ErrMissingKey, explanationType)
	}

	parts := []string{root, family, strconv.Itoa(numClasses) + "_class_scenario"}
	parts = append(parts, segments...)
	parts = append(parts, subdir)
	return filepath.Join(parts...), nil
}
