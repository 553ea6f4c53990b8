// Package evaluation defines the metric registry consumed by meta-explanations
// and a set of reference metrics over stacked per-sample outputs.
package evaluation

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Errors returned by reference metrics.
var (
	ErrEmptyInput      = errors.New("metric input has no samples")
	ErrLengthMismatch  = errors.New("prediction rows and labels differ in length")
	ErrLabelOutOfRange = errors.New("label outside prediction columns")
	ErrInvalidArg      = errors.New("invalid metric argument")
)

// Source names the stacked tensor a registry entry is evaluated on.
type Source string

const (
	SourceLogits      Source = "logits"
	SourceLatent      Source = "latent"
	SourceNucleiLabel Source = "nuclei_label"
)

// Args are the keyword arguments a metric is constructed with.
type Args map[string]any

// MetricFunc computes a metric from an N×D prediction tensor and N labels.
// Results are scalars, 1×1 matrices, or mappings.
type MetricFunc func(pred *mat.Dense, labels []int) (any, error)

// Factory builds a MetricFunc from its arguments.
type Factory func(args Args) (MetricFunc, error)

// Entry binds a metric name to its arguments, constructor, and input tensor.
type Entry struct {
	Name   string
	Args   Args
	New    Factory
	Source Source
}

// Registry is an ordered metric table. It is passed to meta-explanations
// explicitly so callers can substitute their own metrics.
type Registry []Entry

// DefaultRegistry returns the reference metrics. None of them reads
// SourceNucleiLabel; callers add nuclei-level metrics through their own
// entries.
func DefaultRegistry() Registry {
	return Registry{
		{Name: "_f1_score", Args: Args{"average": "weighted"}, New: NewF1Score, Source: SourceLogits},
		{Name: "_ce_loss", Args: Args{}, New: NewCrossEntropy, Source: SourceLogits},
		{Name: "_classification_report", Args: Args{}, New: NewClassificationReport, Source: SourceLogits},
		{Name: "_clustering_quality", Args: Args{}, New: NewClusteringQuality, Source: SourceLatent},
	}
}

// Names returns the entry names in registry order.
func (r Registry) Names() []string {
	names := make([]string, len(r))
	for i, e := range r {
		names[i] = e.Name
	}
	return names
}
