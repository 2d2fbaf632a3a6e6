// Package spectral computes starting coordinates for the layout engine from
// the eigenvectors of the graph Laplacian.
//
// The coordinates of vertex i are the i-th entries of the eigenvectors for
// the 2nd through (d+1)-th smallest eigenvalues of L = D - A. The result is
// made deterministic by fixing each column's sign, then rescaled so that the
// mean edge length equals [Options.Scale], then lightly jittered with a
// seeded Gaussian so that vertices sharing a position are separated.
//
// When a dense factorization is not possible or not meaningful the package
// falls back to a seeded uniform cube and says why in [Result.Reason].
package spectral

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/graphem/internal/rng"
	gerrors "github.com/matzehuels/graphem/pkg/errors"
	"github.com/matzehuels/graphem/pkg/graph"
)

const (
	// DefaultMaxVertices caps the dense eigendecomposition.
	DefaultMaxVertices = 4096

	// DefaultJitter is the jitter standard deviation as a fraction of Scale.
	DefaultJitter = 0.01
)

// Options configures [Initialize].
type Options struct {
	// Scale is the target mean edge length. Must be finite and > 0.
	Scale float64

	// Jitter is the Gaussian jitter standard deviation as a fraction of
	// Scale. Zero disables jitter.
	Jitter float64

	// MaxVertices is the largest graph factorized densely. Zero means
	// DefaultMaxVertices.
	MaxVertices int

	// Seed drives the jitter and the fallback cube.
	Seed uint64
}

// Result is the output of [Initialize].
type Result struct {
	// Positions is the n x d starting matrix.
	Positions *mat.Dense

	// Fallback is set when Positions came from the uniform cube.
	Fallback bool

	// Reason says why the fallback was taken.
	Reason string
}

// Initialize returns starting coordinates for g in dim dimensions.
//
// It returns an INVALID_CONFIG error only for dim < 1 or an invalid Scale;
// every degenerate graph is handled by the fallback.
func Initialize(g *graph.Graph, dim int, opts Options) (*Result, error) {
	if dim < 1 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "dimension must be >= 1, got %d", dim)
	}
	if err := gerrors.ValidatePositive("scale", opts.Scale); err != nil {
		return nil, err
	}
	if err := gerrors.ValidateNonNegative("jitter", opts.Jitter); err != nil {
		return nil, err
	}
	maxVertices := opts.MaxVertices
	if maxVertices <= 0 {
		maxVertices = DefaultMaxVertices
	}

	n := g.N()
	r := rng.Derive(opts.Seed, rng.StreamSpectral)
	fallback := func(reason string) *Result {
		return &Result{Positions: uniformCube(n, dim, opts.Scale, r), Fallback: true, Reason: reason}
	}

	switch {
	case n < dim+1:
		return fallback("graph has fewer than dimension+1 vertices"), nil
	case n > maxVertices:
		return fallback("graph exceeds the dense eigendecomposition limit"), nil
	case !g.IsConnected():
		return fallback("graph is disconnected"), nil
	}

	var es mat.EigenSym
	if ok := es.Factorize(g.Laplacian(), true); !ok {
		return fallback("eigendecomposition did not converge"), nil
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	coords := mat.NewDense(n, dim, nil)
	coords.Copy(vecs.Slice(0, n, 1, dim+1))
	fixSigns(coords)

	mean := meanEdgeLength(g, coords)
	if mean <= 0 || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return fallback("spectral coordinates collapse every edge"), nil
	}
	coords.Scale(opts.Scale/mean, coords)

	if sd := opts.Jitter * opts.Scale; sd > 0 {
		for i := 0; i < n; i++ {
			for c := 0; c < dim; c++ {
				coords.Set(i, c, coords.At(i, c)+sd*r.NormFloat64())
			}
		}
	}
	return &Result{Positions: coords}, nil
}

// fixSigns flips each column so that its largest-magnitude entry, the
// lowest-indexed one on ties, is positive.
func fixSigns(m *mat.Dense) {
	n, d := m.Dims()
	for c := 0; c < d; c++ {
		best, at := -1.0, 0
		for i := 0; i < n; i++ {
			if a := math.Abs(m.At(i, c)); a > best {
				best, at = a, i
			}
		}
		if m.At(at, c) < 0 {
			for i := 0; i < n; i++ {
				m.Set(i, c, -m.At(i, c))
			}
		}
	}
}

func meanEdgeLength(g *graph.Graph, m *mat.Dense) float64 {
	if g.M() == 0 {
		return 0
	}
	var sum float64
	for _, e := range g.Edges() {
		sum += mat.Norm(rowDiff(m, e.U, e.V), 2)
	}
	return sum / float64(g.M())
}

func rowDiff(m *mat.Dense, u, v int) *mat.VecDense {
	var diff mat.VecDense
	diff.SubVec(m.RowView(u), m.RowView(v))
	return &diff
}

// uniformCube draws n points from [-s, s]^d with s = scale * n^(1/d) / 2,
// which gives roughly one point per scale^d volume.
func uniformCube(n, d int, scale float64, r *rand.Rand) *mat.Dense {
	s := scale * math.Pow(float64(n), 1/float64(d)) / 2
	m := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for c := 0; c < d; c++ {
			m.Set(i, c, (2*r.Float64()-1)*s)
		}
	}
	return m
}
