package centrality

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

// Center selects the reference point of Radii.
type Center string

const (
	FromCentroid Center = "centroid"
	FromOrigin   Center = "origin"
)

// Radii returns the Euclidean distance of each row of pos from the chosen
// center.
func Radii(pos mat.Matrix, from Center) ([]float64, error) {
	n, d := pos.Dims()
	ref := make([]float64, d)
	switch from {
	case FromOrigin:
	case FromCentroid, "":
		for i := 0; i < n; i++ {
			for c := 0; c < d; c++ {
				ref[c] += pos.At(i, c)
			}
		}
		if n > 0 {
			floats.Scale(1/float64(n), ref)
		}
	default:
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "unknown center %q (want centroid or origin)", from)
	}

	out := make([]float64, n)
	row := make([]float64, d)
	for i := 0; i < n; i++ {
		mat.Row(row, i, pos)
		out[i] = floats.Distance(row, ref, 2)
	}
	return out, nil
}
