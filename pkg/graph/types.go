package graph

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/mat"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

var (
	// ErrEmpty is returned by [New] when the vertex count is below one.
	ErrEmpty = errors.New("graph must have at least one vertex")

	// ErrVertexOutOfRange is returned by [New] when an edge endpoint is not
	// in 0..n-1.
	ErrVertexOutOfRange = errors.New("edge endpoint out of range")

	// ErrSelfLoop is returned by [New] when an edge joins a vertex to itself.
	ErrSelfLoop = errors.New("self-loop")

	// ErrDuplicateEdge is returned by [New] when the same unordered pair
	// appears twice. (u,v) and (v,u) are the same pair.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// =============================================================================
// Edge
// =============================================================================

// Edge is an unordered vertex pair. U and V keep the order they were given in.
type Edge struct {
	U, V int
}

// key returns the canonical (min, max) form of the pair.
func (e Edge) key() [2]int {
	if e.U < e.V {
		return [2]int{e.U, e.V}
	}
	return [2]int{e.V, e.U}
}

// =============================================================================
// Graph
// =============================================================================

// Graph is an immutable undirected simple graph over vertices 0..n-1.
//
// The zero value is not usable - use [New]. A Graph is safe for concurrent
// reads; nothing mutates it after construction.
type Graph struct {
	n     int
	edges []Edge
	adj   [][]int
}

// New validates the edge set and builds a Graph with n vertices.
//
// Returned errors carry [gerrors.ErrCodeInvalidGraph] and wrap one of
// [ErrEmpty], [ErrVertexOutOfRange], [ErrSelfLoop] or [ErrDuplicateEdge].
// Edge order is preserved; it fixes the order in which forces are summed.
func New(n int, edges []Edge) (*Graph, error) {
	if n < 1 {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidGraph, ErrEmpty, "n = %d", n)
	}

	seen := make(map[[2]int]struct{}, len(edges))
	adj := make([][]int, n)
	for i, e := range edges {
		if e.U < 0 || e.U >= n || e.V < 0 || e.V >= n {
			return nil, gerrors.Wrap(gerrors.ErrCodeInvalidGraph, ErrVertexOutOfRange,
				"edge %d (%d,%d) with n = %d", i, e.U, e.V, n)
		}
		if e.U == e.V {
			return nil, gerrors.Wrap(gerrors.ErrCodeInvalidGraph, ErrSelfLoop, "edge %d on vertex %d", i, e.U)
		}
		k := e.key()
		if _, dup := seen[k]; dup {
			return nil, gerrors.Wrap(gerrors.ErrCodeInvalidGraph, ErrDuplicateEdge, "edge %d (%d,%d)", i, e.U, e.V)
		}
		seen[k] = struct{}{}
		adj[e.U] = append(adj[e.U], e.V)
		adj[e.V] = append(adj[e.V], e.U)
	}
	for _, nbrs := range adj {
		slices.Sort(nbrs)
	}

	return &Graph{
		n:     n,
		edges: slices.Clone(edges),
		adj:   adj,
	}, nil
}

// FromPairs is a convenience wrapper around [New] for literal edge lists.
func FromPairs(n int, pairs [][2]int) (*Graph, error) {
	edges := make([]Edge, len(pairs))
	for i, p := range pairs {
		edges[i] = Edge{U: p[0], V: p[1]}
	}
	return New(n, edges)
}

// N returns the number of vertices.
func (g *Graph) N() int { return g.n }

// M returns the number of edges.
func (g *Graph) M() int { return len(g.edges) }

// Edges returns the edge list in construction order. Callers must not
// modify the returned slice.
func (g *Graph) Edges() []Edge { return g.edges }

// Neighbors returns the sorted adjacency of v. Callers must not modify the
// returned slice.
func (g *Graph) Neighbors(v int) []int { return g.adj[v] }

// Degree returns the number of edges incident to v.
func (g *Graph) Degree(v int) int { return len(g.adj[v]) }

// Degrees returns the degree of every vertex.
func (g *Graph) Degrees() []int {
	out := make([]int, g.n)
	for v := range out {
		out[v] = len(g.adj[v])
	}
	return out
}

// Density returns 2m / (n(n-1)), or 0 for a single vertex.
func (g *Graph) Density() float64 {
	if g.n < 2 {
		return 0
	}
	return 2 * float64(len(g.edges)) / (float64(g.n) * float64(g.n-1))
}

// Components returns the connected components, each sorted ascending, in
// order of their smallest vertex.
func (g *Graph) Components() [][]int {
	cc := topo.ConnectedComponents(g.Gonum())
	comps := make([][]int, len(cc))
	for i, nodes := range cc {
		comp := make([]int, len(nodes))
		for j, node := range nodes {
			comp[j] = int(node.ID())
		}
		slices.Sort(comp)
		comps[i] = comp
	}
	slices.SortFunc(comps, func(a, b []int) int { return a[0] - b[0] })
	return comps
}

// IsConnected reports whether the graph has a single connected component.
func (g *Graph) IsConnected() bool {
	return len(g.Components()) == 1
}

// Laplacian returns the combinatorial Laplacian L = D - A.
func (g *Graph) Laplacian() *mat.SymDense {
	l := mat.NewSymDense(g.n, nil)
	for v, nbrs := range g.adj {
		l.SetSym(v, v, float64(len(nbrs)))
	}
	for _, e := range g.edges {
		l.SetSym(e.U, e.V, -1)
	}
	return l
}

// Gonum returns the graph as a gonum undirected graph with node IDs equal
// to vertex ids, for use with gonum's network and path packages.
func (g *Graph) Gonum() *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for v := 0; v < g.n; v++ {
		ug.AddNode(simple.Node(v))
	}
	for _, e := range g.edges {
		ug.SetEdge(simple.Edge{F: simple.Node(e.U), T: simple.Node(e.V)})
	}
	return ug
}

// GonumDirected returns the graph with every edge present in both
// directions, for algorithms that only accept directed graphs.
func (g *Graph) GonumDirected() *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for v := 0; v < g.n; v++ {
		dg.AddNode(simple.Node(v))
	}
	for _, e := range g.edges {
		dg.SetEdge(simple.Edge{F: simple.Node(e.U), T: simple.Node(e.V)})
		dg.SetEdge(simple.Edge{F: simple.Node(e.V), T: simple.Node(e.U)})
	}
	return dg
}

// String returns a short summary such as "graph(n=10, m=9)".
func (g *Graph) String() string {
	return fmt.Sprintf("graph(n=%d, m=%d)", g.n, len(g.edges))
}
