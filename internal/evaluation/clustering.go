package evaluation

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NewClusteringQuality builds a mean silhouette coefficient over latent
// embeddings grouped by ground-truth label. Singleton clusters score zero,
// and so does a test set holding a single class.
func NewClusteringQuality(Args) (MetricFunc, error) {
	return func(latent *mat.Dense, labels []int) (any, error) {
		if err := checkInput(latent, labels); err != nil {
			return nil, err
		}

		members := make(map[int][]int)
		for i, y := range labels {
			members[y] = append(members[y], i)
		}
		if len(members) < 2 {
			return 0.0, nil
		}

		var total float64
		for i, y := range labels {
			if len(members[y]) == 1 {
				continue
			}

			a := meanDistance(latent, i, members[y])
			b := -1.0
			for c, idx := range members {
				if c == y {
					continue
				}
				if d := meanDistance(latent, i, idx); b < 0 || d < b {
					b = d
				}
			}

			if m := max(a, b); m > 0 {
				total += (b - a) / m
			}
		}
		return total / float64(len(labels)), nil
	}, nil
}

// meanDistance is the mean Euclidean distance from row i to the rows in idx,
// excluding i itself.
func meanDistance(x *mat.Dense, i int, idx []int) float64 {
	row := x.RawRowView(i)
	var sum float64
	var n int
	for _, j := range idx {
		if j == i {
			continue
		}
		sum += floats.Distance(row, x.RawRowView(j), 2)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
