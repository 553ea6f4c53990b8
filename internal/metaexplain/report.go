package metaexplain

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/crobbins327/histocartography/internal/evaluation"
)

// ReportFile is the name of the JSON report written to the save path.
const ReportFile = "meta_explanation.json"

// Output maps output keys to metric results. Graph outputs nest one
// map per pruning level; image outputs are flat.
type Output map[string]any

// Report is the persisted meta-explanation.
type Report struct {
	Config RunConfig `json:"config"`
	Output Output    `json:"output"`
}

func encapsulate(cfg RunConfig, out Output) Report {
	return Report{Config: cfg, Output: out}
}

func writeReport(dir string, r Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnserializable, err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func readReport(dir string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, ReportFile))
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// runMetric builds the entry's metric, applies it and coerces the result.
func runMetric(e evaluation.Entry, x *mat.Dense, labels []int) (any, error) {
	m, err := e.New(e.Args)
	if err != nil {
		return nil, fmt.Errorf("build metric %s: %w", e.Name, err)
	}
	v, err := m(x, labels)
	if err != nil {
		return nil, fmt.Errorf("metric %s: %w", e.Name, err)
	}
	v, err = coerce(v)
	if err != nil {
		return nil, fmt.Errorf("metric %s: %w", e.Name, err)
	}
	return v, nil
}

// coerce converts a metric result into a JSON-safe value: single-element
// matrices become scalars, scalars and mappings pass through.
func coerce(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int, int32, int64:
		return x, nil
	case mat.Matrix:
		r, c := x.Dims()
		if r*c != 1 {
			return nil, fmt.Errorf("%w: %dx%d matrix", ErrUnserializable, r, c)
		}
		return finite(x.At(0, 0))
	case map[string]any, map[string]float64:
		return x, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnserializable, v)
}

func finite(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v", ErrUnserializable, f)
	}
	return f, nil
}
