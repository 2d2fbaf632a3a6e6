// Package graph provides the undirected graph model and its serialization
// formats.
//
// A [Graph] has vertices 0..n-1 and a set of distinct unordered edges with
// no self-loops. It is immutable once built by [New], which rejects invalid
// input with an INVALID_GRAPH error wrapping one of the package sentinels:
//
//	g, err := graph.FromPairs(4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
//	if errors.Is(err, graph.ErrSelfLoop) {
//	    // ...
//	}
//
// Connectivity is not required; [Graph.Components] and
// [Graph.IsConnected] report it.
//
// # Formats
//
// Graphs are read from JSON documents or SNAP-style edge lists:
//
//	{"n": 4, "edges": [[0, 1], [1, 2], [2, 3]]}
//
//	# comment
//	0 1
//	1 2
//
// [ReadGraphFile] picks the format from the file extension. Edge lists are
// relabelled to 0..n-1 and their self-loops and duplicate lines dropped;
// [ReadEdgeList] reports what was removed.
//
// Run output is an [Embedding]: the n x d coordinate rows plus the
// parameters, seed and notices that produced them.
//
// # Generators
//
// [Path], [Cycle], [Star], [Complete] and [Grid] build fixed families.
// [ErdosRenyi] and [BarabasiAlbert] are seeded and reproducible.
//
// # Gonum Interop
//
// [Graph.Laplacian] returns L = D - A as a *mat.SymDense for spectral
// methods; [Graph.Gonum] and [Graph.GonumDirected] return views for the
// gonum network and path packages.
//
// # Concurrency
//
// A Graph is safe for concurrent reads. Embedding values are plain data.
package graph
