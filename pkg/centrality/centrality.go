// Package centrality compares an embedding's geometry with classical
// vertex centrality.
//
// A good embedding places influential vertices near the middle of the
// point cloud. [Report] measures that by the Spearman rank correlation
// between each vertex's radius and each centrality measure; strongly
// negative rho means central vertices sit close to the center.
package centrality

import (
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"

	"github.com/matzehuels/graphem/pkg/graph"
)

// Measure names, in report order.
const (
	MeasureDegree      = "degree"
	MeasureBetweenness = "betweenness"
	MeasureCloseness   = "closeness"
	MeasureHarmonic    = "harmonic"
	MeasureEigenvector = "eigenvector"
	MeasurePageRank    = "pagerank"
)

// Measures lists every measure Compute produces.
var Measures = []string{
	MeasureDegree,
	MeasureBetweenness,
	MeasureCloseness,
	MeasureHarmonic,
	MeasureEigenvector,
	MeasurePageRank,
}

// PageRank parameters.
const (
	Damping      = 0.85
	PageRankTol  = 1e-6
	eigenMaxIter = 1000
	eigenTol     = 1e-10
)

// Degree returns the degree of every vertex.
func Degree(g *graph.Graph) []float64 {
	out := make([]float64, g.N())
	for v, d := range g.Degrees() {
		out[v] = float64(d)
	}
	return out
}

// Betweenness returns shortest-path betweenness. Pairs are counted in
// both directions, which scales every value equally.
func Betweenness(g *graph.Graph) []float64 {
	return dense(g.N(), network.Betweenness(g.Gonum()))
}

// Closeness returns the reciprocal of each vertex's summed shortest-path
// distance. Isolated vertices score zero; prefer Harmonic on disconnected
// graphs.
func Closeness(g *graph.Graph) []float64 {
	ug := g.Gonum()
	return clean(dense(g.N(), network.Closeness(ug, path.DijkstraAllPaths(ug))))
}

// Harmonic returns the summed reciprocal distance to every other vertex,
// which stays informative on disconnected graphs.
func Harmonic(g *graph.Graph) []float64 {
	ug := g.Gonum()
	return clean(dense(g.N(), network.Harmonic(ug, path.DijkstraAllPaths(ug))))
}

// PageRank returns PageRank with damping 0.85, treating each undirected
// edge as a pair of arcs.
func PageRank(g *graph.Graph) []float64 {
	return dense(g.N(), network.PageRank(g.GonumDirected(), Damping, PageRankTol))
}

// Eigenvector returns the principal eigenvector of the adjacency matrix,
// normalized to unit length and non-negative. It uses power iteration on
// A + I, which converges on bipartite graphs too and touches each edge once
// per step; a dense mat.EigenSym would need n*n memory.
func Eigenvector(g *graph.Graph) []float64 {
	n := g.N()
	x := make([]float64, n)
	next := make([]float64, n)
	for i := range x {
		x[i] = 1 / math.Sqrt(float64(n))
	}
	for range eigenMaxIter {
		for v := range next {
			s := x[v]
			for _, u := range g.Neighbors(v) {
				s += x[u]
			}
			next[v] = s
		}
		norm := floats.Norm(next, 2)
		if norm == 0 {
			break
		}
		floats.Scale(1/norm, next)
		diff := floats.Distance(x, next, math.Inf(1))
		x, next = next, x
		if diff < eigenTol {
			break
		}
	}
	return x
}

// Compute evaluates every measure in Measures concurrently. The result
// maps measure name to per-vertex values.
func Compute(g *graph.Graph) map[string][]float64 {
	fns := map[string]func(*graph.Graph) []float64{
		MeasureDegree:      Degree,
		MeasureBetweenness: Betweenness,
		MeasureCloseness:   Closeness,
		MeasureHarmonic:    Harmonic,
		MeasureEigenvector: Eigenvector,
		MeasurePageRank:    PageRank,
	}
	results := make([][]float64, len(Measures))
	var eg errgroup.Group
	for i, name := range Measures {
		fn := fns[name]
		eg.Go(func() error {
			results[i] = fn(g)
			return nil
		})
	}
	_ = eg.Wait()

	out := make(map[string][]float64, len(Measures))
	for i, name := range Measures {
		out[name] = results[i]
	}
	return out
}

// dense converts a gonum id-keyed map to a slice; absent ids are zero.
func dense(n int, m map[int64]float64) []float64 {
	out := make([]float64, n)
	for id, v := range m {
		out[id] = v
	}
	return out
}

// clean maps NaN and infinities to zero.
func clean(xs []float64) []float64 {
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			xs[i] = 0
		}
	}
	return xs
}
