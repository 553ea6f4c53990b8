// Package projection reduces per-sample embeddings to two dimensions and
// renders them as labelled scatter plots.
package projection

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptyInput = errors.New("projection input has no samples")
	ErrProjection = errors.New("projection failed")
)

// Projector maps an N×D matrix to N×2.
type Projector interface {
	Project(x *mat.Dense) (*mat.Dense, error)
}

// PCA projects onto the first two principal components.
// Inputs with fewer than two components are padded with zero columns.
type PCA struct{}

func (PCA) Project(x *mat.Dense) (*mat.Dense, error) {
	if x == nil || x.IsEmpty() {
		return nil, ErrEmptyInput
	}

	n, d := x.Dims()
	out := mat.NewDense(n, 2, nil)
	if n < 2 {
		return out, nil
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, fmt.Errorf("%w: principal component decomposition did not converge", ErrProjection)
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, k := vecs.Dims()
	k = min(k, 2)

	centered := mat.DenseCopyOf(x)
	for j := range d {
		col := mat.Col(nil, j, x)
		mean := stat.Mean(col, nil)
		for i := range n {
			centered.Set(i, j, col[i]-mean)
		}
	}

	var proj mat.Dense
	proj.Mul(centered, vecs.Slice(0, d, 0, k))
	out.Slice(0, n, 0, k).(*mat.Dense).Copy(&proj)
	return out, nil
}
