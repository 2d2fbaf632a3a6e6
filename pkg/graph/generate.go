package graph

import (
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/graphem/internal/rng"
	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

// =============================================================================
// Deterministic Families
// =============================================================================

// Path returns the path 0-1-...-(n-1).
func Path(n int) (*Graph, error) {
	edges := make([]Edge, 0, max(n-1, 0))
	for i := 0; i+1 < n; i++ {
		edges = append(edges, Edge{U: i, V: i + 1})
	}
	return New(n, edges)
}

// Cycle returns the cycle on n >= 3 vertices.
func Cycle(n int) (*Graph, error) {
	if n < 3 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "cycle needs n >= 3, got %d", n)
	}
	edges := make([]Edge, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, Edge{U: i, V: (i + 1) % n})
	}
	return New(n, edges)
}

// Star returns the star with center 0 and leaves 1..n-1.
func Star(n int) (*Graph, error) {
	edges := make([]Edge, 0, max(n-1, 0))
	for i := 1; i < n; i++ {
		edges = append(edges, Edge{U: 0, V: i})
	}
	return New(n, edges)
}

// Complete returns K_n with edges in lexicographic (i, j), i < j order.
func Complete(n int) (*Graph, error) {
	var edges []Edge
	if n > 1 {
		edges = make([]Edge, 0, n*(n-1)/2)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, Edge{U: i, V: j})
		}
	}
	return New(n, edges)
}

// Grid returns the rows x cols lattice. Vertex (r, c) has id r*cols + c.
func Grid(rows, cols int) (*Graph, error) {
	if rows < 1 || cols < 1 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "grid needs rows, cols >= 1, got %dx%d", rows, cols)
	}
	var edges []Edge
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := r*cols + c
			if c+1 < cols {
				edges = append(edges, Edge{U: v, V: v + 1})
			}
			if r+1 < rows {
				edges = append(edges, Edge{U: v, V: v + cols})
			}
		}
	}
	return New(rows*cols, edges)
}

// =============================================================================
// Random Families
// =============================================================================

// ErdosRenyi returns a G(n, p) graph. Pairs are visited in lexicographic
// order and each is kept with probability p, so the result depends only on
// (n, p, seed).
func ErdosRenyi(n int, p float64, seed uint64) (*Graph, error) {
	if err := gerrors.ValidateProbability("p", p); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidGraph, ErrEmpty, "n = %d", n)
	}
	r := rng.Derive(seed, rng.StreamGenerator)
	var edges []Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r.Float64() < p {
				edges = append(edges, Edge{U: i, V: j})
			}
		}
	}
	return New(n, edges)
}

// BarabasiAlbert returns a preferential-attachment graph. It starts from a
// clique on m+1 vertices; every later vertex attaches to m distinct existing
// vertices drawn with probability proportional to degree.
func BarabasiAlbert(n, m int, seed uint64) (*Graph, error) {
	if m < 1 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "m must be >= 1, got %d", m)
	}
	if n <= m {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "n must exceed m, got n=%d m=%d", n, m)
	}

	r := rng.Derive(seed, rng.StreamGenerator)
	var edges []Edge
	// targets holds one entry per edge endpoint, so a uniform draw from it
	// is a degree-proportional draw over vertices.
	var targets []int
	for i := 0; i <= m; i++ {
		for j := i + 1; j <= m; j++ {
			edges = append(edges, Edge{U: i, V: j})
			targets = append(targets, i, j)
		}
	}

	chosen := make(map[int]struct{}, m)
	picks := make([]int, 0, m)
	for v := m + 1; v < n; v++ {
		clear(chosen)
		picks = picks[:0]
		for len(picks) < m {
			u := targets[r.IntN(len(targets))]
			if _, ok := chosen[u]; ok {
				continue
			}
			chosen[u] = struct{}{}
			picks = append(picks, u)
		}
		for _, u := range picks {
			edges = append(edges, Edge{U: u, V: v})
			targets = append(targets, u, v)
		}
	}
	return New(n, edges)
}

// WattsStrogatz returns a small-world graph: a ring where every vertex is
// joined to its k/2 nearest neighbours on each side, after which each ring
// edge (u, u+j) is rewired with probability p to (u, w) for a uniform w.
// Rewirings that would create a self-loop or a duplicate are skipped.
func WattsStrogatz(n, k int, p float64, seed uint64) (*Graph, error) {
	if err := gerrors.ValidateProbability("p", p); err != nil {
		return nil, err
	}
	if k < 2 || k >= n {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "k must be in [2, n), got k=%d n=%d", k, n)
	}

	set := newEdgeSet()
	for j := 1; j <= k/2; j++ {
		for u := 0; u < n; u++ {
			set.add(u, (u+j)%n)
		}
	}
	r := rng.Derive(seed, rng.StreamGenerator)
	for j := 1; j <= k/2; j++ {
		for u := 0; u < n; u++ {
			if r.Float64() >= p {
				continue
			}
			v := (u + j) % n
			w := r.IntN(n)
			if w == u || set.has(u, w) || !set.has(u, v) {
				continue
			}
			set.remove(u, v)
			set.add(u, w)
		}
	}
	return New(n, set.sorted())
}

// maxRegularAttempts bounds the restarts of RandomRegular.
const maxRegularAttempts = 100

// RandomRegular returns a uniform-ish d-regular graph on n vertices by
// pairing degree stubs at random, re-pairing the stubs that produced
// self-loops or duplicates until none remain. A dead end restarts the
// pairing; n*d must be even and d < n.
func RandomRegular(n, d int, seed uint64) (*Graph, error) {
	if d < 0 || d >= n {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "d must be in [0, n), got d=%d n=%d", d, n)
	}
	if n*d%2 != 0 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "n*d must be even, got n=%d d=%d", n, d)
	}
	r := rng.Derive(seed, rng.StreamGenerator)
	for range maxRegularAttempts {
		if set, ok := pairStubs(n, d, r); ok {
			return New(n, set.sorted())
		}
	}
	return nil, gerrors.New(gerrors.ErrCodeInternal, "no %d-regular graph on %d vertices after %d attempts", d, n, maxRegularAttempts)
}

func pairStubs(n, d int, r *rand.Rand) (*edgeSet, bool) {
	set := newEdgeSet()
	stubs := make([]int, 0, n*d)
	for v := 0; v < n; v++ {
		for range d {
			stubs = append(stubs, v)
		}
	}
	for len(stubs) > 0 {
		r.Shuffle(len(stubs), func(i, j int) { stubs[i], stubs[j] = stubs[j], stubs[i] })
		leftover := map[int]int{}
		for i := 0; i+1 < len(stubs); i += 2 {
			u, v := stubs[i], stubs[i+1]
			if u != v && !set.has(u, v) {
				set.add(u, v)
				continue
			}
			leftover[u]++
			leftover[v]++
		}
		if !canPair(set, leftover) {
			return nil, false
		}
		stubs = stubs[:0]
		for _, v := range slices.Sorted(maps.Keys(leftover)) {
			for range leftover[v] {
				stubs = append(stubs, v)
			}
		}
	}
	return set, true
}

// canPair reports whether some two distinct leftover vertices are not yet
// adjacent, which is needed for another pairing round to make progress.
func canPair(set *edgeSet, leftover map[int]int) bool {
	if len(leftover) == 0 {
		return true
	}
	vs := slices.Sorted(maps.Keys(leftover))
	for i, u := range vs {
		for _, v := range vs[i+1:] {
			if !set.has(u, v) {
				return true
			}
		}
	}
	return false
}

// StochasticBlock returns a stochastic block model graph. Blocks are
// contiguous vertex ranges of the given sizes; a pair in blocks (a, b) is
// joined with probability probs[a][b], visiting pairs in lexicographic
// order. probs must be square and symmetric.
func StochasticBlock(sizes []int, probs [][]float64, seed uint64) (*Graph, error) {
	if len(sizes) == 0 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "stochastic block model needs at least one block")
	}
	if len(probs) != len(sizes) {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "probability matrix has %d rows, want %d", len(probs), len(sizes))
	}
	var block []int
	for b, size := range sizes {
		if size < 1 {
			return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "block %d has size %d", b, size)
		}
		if len(probs[b]) != len(sizes) {
			return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "probability row %d has %d entries, want %d", b, len(probs[b]), len(sizes))
		}
		for c, p := range probs[b] {
			if err := gerrors.ValidateProbability("probs", p); err != nil {
				return nil, err
			}
			if p != probs[c][b] {
				return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "probability matrix is not symmetric at (%d, %d)", b, c)
			}
		}
		for range size {
			block = append(block, b)
		}
	}

	n := len(block)
	r := rng.Derive(seed, rng.StreamGenerator)
	var edges []Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r.Float64() < probs[block[i]][block[j]] {
				edges = append(edges, Edge{U: i, V: j})
			}
		}
	}
	return New(n, edges)
}

// RandomGeometric places n points uniformly in the unit cube of the given
// dimension and joins every pair at Euclidean distance <= radius.
func RandomGeometric(n int, radius float64, dim int, seed uint64) (*Graph, error) {
	if n < 1 {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidGraph, ErrEmpty, "n = %d", n)
	}
	if dim < 1 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "dimension must be >= 1, got %d", dim)
	}
	if err := gerrors.ValidateNonNegative("radius", radius); err != nil {
		return nil, err
	}

	r := rng.Derive(seed, rng.StreamGenerator)
	pts := make([][]float64, n)
	for i := range pts {
		pts[i] = make([]float64, dim)
		for k := range pts[i] {
			pts[i][k] = r.Float64()
		}
	}
	r2 := radius * radius
	var edges []Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var d2 float64
			for k := range dim {
				d := pts[i][k] - pts[j][k]
				d2 += d * d
			}
			if d2 <= r2 {
				edges = append(edges, Edge{U: i, V: j})
			}
		}
	}
	return New(n, edges)
}

// Caveman returns l disjoint cliques of k vertices; clique c holds
// vertices c*k .. c*k+k-1.
func Caveman(l, k int) (*Graph, error) {
	if l < 1 || k < 1 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "caveman needs l, k >= 1, got l=%d k=%d", l, k)
	}
	var edges []Edge
	for c := 0; c < l; c++ {
		base := c * k
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				edges = append(edges, Edge{U: base + i, V: base + j})
			}
		}
	}
	return New(l*k, edges)
}

// RelaxedCaveman starts from Caveman(l, k) and rewires each clique edge
// (u, v) with probability p to (u, x) for a uniform vertex x, skipping
// rewirings that would create a self-loop or a duplicate.
func RelaxedCaveman(l, k int, p float64, seed uint64) (*Graph, error) {
	if err := gerrors.ValidateProbability("p", p); err != nil {
		return nil, err
	}
	cave, err := Caveman(l, k)
	if err != nil {
		return nil, err
	}

	n := cave.N()
	set := newEdgeSet()
	for _, e := range cave.Edges() {
		set.add(e.U, e.V)
	}
	r := rng.Derive(seed, rng.StreamGenerator)
	for _, e := range cave.Edges() {
		if r.Float64() >= p {
			continue
		}
		x := r.IntN(n)
		if x == e.U || set.has(e.U, x) {
			continue
		}
		set.remove(e.U, e.V)
		set.add(e.U, x)
	}
	return New(n, set.sorted())
}

// =============================================================================
// Edge Set
// =============================================================================

// edgeSet is a mutable set of undirected edges used by the rewiring
// generators.
type edgeSet struct {
	m map[[2]int]struct{}
}

func newEdgeSet() *edgeSet { return &edgeSet{m: map[[2]int]struct{}{}} }

func (s *edgeSet) add(u, v int)      { s.m[Edge{U: u, V: v}.key()] = struct{}{} }
func (s *edgeSet) remove(u, v int)   { delete(s.m, Edge{U: u, V: v}.key()) }
func (s *edgeSet) has(u, v int) bool { _, ok := s.m[Edge{U: u, V: v}.key()]; return ok }

// sorted returns the edges in lexicographic (u, v), u < v order.
func (s *edgeSet) sorted() []Edge {
	edges := make([]Edge, 0, len(s.m))
	for k := range s.m {
		edges = append(edges, Edge{U: k[0], V: k[1]})
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		if a.U != b.U {
			return a.U - b.U
		}
		return a.V - b.V
	})
	return edges
}
