// Package explanations defines the per-sample explanation records produced
// upstream by saliency explainers and consumed by meta-explanations.
package explanations

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
)

// Domain errors for explanation records.
var (
	ErrInvalidRecord  = errors.New("invalid explanation record")
	ErrUnknownVariant = errors.New("unknown explanation variant")
)

// Variant distinguishes graph-model explanations from image-model explanations.
type Variant string

const (
	VariantGraph Variant = "graph"
	VariantImage Variant = "image"
)

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case VariantGraph, VariantImage:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// LevelData holds the model outputs recorded for one pruning level of a graph.
type LevelData struct {
	Logits      []float64 `json:"logits"`
	Latent      []float64 `json:"latent"`
	NucleiLabel []float64 `json:"nuclei_label"`
}

// Field returns the named vector: "logits", "latent" or "nuclei_label".
func (d LevelData) Field(name string) ([]float64, bool) {
	switch name {
	case "logits":
		return d.Logits, d.Logits != nil
	case "latent":
		return d.Latent, d.Latent != nil
	case "nuclei_label":
		return d.NucleiLabel, d.NucleiLabel != nil
	}
	return nil, false
}

// GraphRecord is the explanation of one graph sample across pruning levels.
type GraphRecord struct {
	Name              string                  `json:"name,omitempty"`
	Label             int                     `json:"label"`
	ExplanationGraphs map[KeepLevel]LevelData `json:"explanation_graphs"`
}

// UnmarshalJSON decodes the fraction-keyed explanation graphs and rejects
// distinct fractions that resolve to the same KeepLevel.
func (r *GraphRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name              string               `json:"name"`
		Label             int                  `json:"label"`
		ExplanationGraphs map[string]LevelData `json:"explanation_graphs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var graphs map[KeepLevel]LevelData
	if raw.ExplanationGraphs != nil {
		graphs = make(map[KeepLevel]LevelData, len(raw.ExplanationGraphs))
		seen := make(map[KeepLevel]string, len(raw.ExplanationGraphs))
		for _, key := range slices.Sorted(maps.Keys(raw.ExplanationGraphs)) {
			var level KeepLevel
			if err := level.UnmarshalText([]byte(key)); err != nil {
				return err
			}
			if prev, ok := seen[level]; ok {
				return fmt.Errorf("%w: keep fractions %q and %q both resolve to %s", ErrInvalidRecord, prev, key, level.Key())
			}
			seen[level] = key
			graphs[level] = raw.ExplanationGraphs[key]
		}
	}

	r.Name = raw.Name
	r.Label = raw.Label
	r.ExplanationGraphs = graphs
	return nil
}

// GroundTruth returns the sample's ground-truth class.
func (r GraphRecord) GroundTruth() int {
	return r.Label
}

// Levels returns the record's pruning levels, largest first.
func (r GraphRecord) Levels() []KeepLevel {
	levels := slices.Collect(maps.Keys(r.ExplanationGraphs))
	slices.SortFunc(levels, func(a, b KeepLevel) int {
		return cmp.Compare(b, a)
	})
	return levels
}

// ImageRecord is the explanation of one image sample.
type ImageRecord struct {
	Name   string    `json:"name,omitempty"`
	Label  int       `json:"label"`
	Logits []float64 `json:"logits"`
}

// GroundTruth returns the sample's ground-truth class.
func (r ImageRecord) GroundTruth() int {
	return r.Label
}

// DecodeGraphRecords reads a JSON array of graph records.
func DecodeGraphRecords(r io.Reader) ([]GraphRecord, error) {
	var records []GraphRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode graph records: %w", ErrInvalidRecord, err)
	}

	for i, rec := range records {
		if rec.Label < 0 {
			return nil, fmt.Errorf("%w: record %d has negative label %d", ErrInvalidRecord, i, rec.Label)
		}
		if len(rec.ExplanationGraphs) == 0 {
			return nil, fmt.Errorf("%w: record %d has no explanation graphs", ErrInvalidRecord, i)
		}
	}

	return records, nil
}

// DecodeImageRecords reads a JSON array of image records.
func DecodeImageRecords(r io.Reader) ([]ImageRecord, error) {
	var records []ImageRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode image records: %w", ErrInvalidRecord, err)
	}

	for i, rec := range records {
		if rec.Label < 0 {
			return nil, fmt.Errorf("%w: record %d has negative label %d", ErrInvalidRecord, i, rec.Label)
		}
		if len(rec.Logits) == 0 {
			return nil, fmt.Errorf("%w: record %d has no logits", ErrInvalidRecord, i)
		}
	}

	return records, nil
}

// CountRecords decodes r as the given variant and returns the number of records.
func CountRecords(variant Variant, r io.Reader) (int, error) {
	switch variant {
	case VariantGraph:
		recs, err := DecodeGraphRecords(r)
		return len(recs), err
	case VariantImage:
		recs, err := DecodeImageRecords(r)
		return len(recs), err
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
}
