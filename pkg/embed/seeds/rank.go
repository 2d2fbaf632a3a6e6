package seeds

import (
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

// Ranker scores every vertex of a coordinate matrix. Lower scores are more
// central; the selector commits the lowest-scoring unselected vertex.
type Ranker interface {
	Name() string
	Score(pos *mat.Dense) []float64
}

type rankerFunc struct {
	name string
	fn   func(pos *mat.Dense) []float64
}

func (r rankerFunc) Name() string                   { return r.name }
func (r rankerFunc) Score(pos *mat.Dense) []float64 { return r.fn(pos) }

var (
	// CentroidDistance scores a vertex by its distance to the mean of all
	// vertex positions.
	CentroidDistance Ranker = rankerFunc{"centroid", centroidDistance}

	// OriginDistance scores a vertex by the norm of its position.
	OriginDistance Ranker = rankerFunc{"origin", originDistance}
)

// Rankers lists the built-in rankers by name.
var Rankers = []Ranker{CentroidDistance, OriginDistance}

// RankerByName returns the built-in ranker with the given name.
func RankerByName(name string) (Ranker, error) {
	for _, r := range Rankers {
		if strings.EqualFold(r.Name(), name) {
			return r, nil
		}
	}
	names := make([]string, len(Rankers))
	for i, r := range Rankers {
		names[i] = r.Name()
	}
	return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "unknown ranker %q (want one of %s)", name, strings.Join(names, ", "))
}

// Centroid returns the mean position.
func Centroid(pos *mat.Dense) []float64 {
	n, d := pos.Dims()
	c := make([]float64, d)
	for i := 0; i < n; i++ {
		floats.Add(c, pos.RawRowView(i))
	}
	floats.Scale(1/float64(n), c)
	return c
}

func centroidDistance(pos *mat.Dense) []float64 {
	c := Centroid(pos)
	n, _ := pos.Dims()
	out := make([]float64, n)
	for i := range out {
		out[i] = floats.Distance(pos.RawRowView(i), c, 2)
	}
	return out
}

func originDistance(pos *mat.Dense) []float64 {
	n, _ := pos.Dims()
	out := make([]float64, n)
	for i := range out {
		out[i] = floats.Norm(pos.RawRowView(i), 2)
	}
	return out
}

// order returns the candidates sorted by (score, id).
func order(scores []float64, candidates []int) []int {
	out := slices.Clone(candidates)
	slices.SortFunc(out, func(a, b int) int {
		sa, sb := scores[a], scores[b]
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		// NaN sorts last.
		if na, nb := math.IsNaN(sa), math.IsNaN(sb); na != nb {
			if na {
				return 1
			}
			return -1
		}
		return a - b
	})
	return out
}
