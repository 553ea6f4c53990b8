package metaexplain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/crobbins327/histocartography/internal/evaluation"
)

// LevelTensors are the stacked record outputs of one pruning level.
type LevelTensors struct {
	Logits      *mat.Dense
	Latent      *mat.Dense
	NucleiLabel *mat.Dense
}

// Select returns the tensor a registry entry is evaluated on.
func (t *LevelTensors) Select(src evaluation.Source) (*mat.Dense, error) {
	switch src {
	case evaluation.SourceLogits:
		return t.Logits, nil
	case evaluation.SourceLatent:
		return t.Latent, nil
	case evaluation.SourceNucleiLabel:
		return t.NucleiLabel, nil
	}
	return nil, fmt.Errorf("%w: tensor %q", ErrMissingKey, src)
}

func (t *LevelTensors) set(field string, m *mat.Dense) {
	switch field {
	case "logits":
		t.Logits = m
	case "latent":
		t.Latent = m
	case "nuclei_label":
		t.NucleiLabel = m
	}
}

// stack builds an N×D matrix from N equal-length rows.
func stack(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, ErrNoExplanations
	}

	cols := len(rows[0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: row 0 is empty", ErrShapeMismatch)
	}

	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrShapeMismatch, i, len(r), cols)
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}
