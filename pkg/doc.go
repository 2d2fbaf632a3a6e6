// Package pkg provides the libraries behind graphem: force-directed graph
// embedding and geometry-driven influence seed selection.
//
// # Overview
//
// graphem places every vertex of an undirected graph in a low-dimensional
// space so that linked vertices sit about one rest length apart while
// unrelated vertices repel. Vertices that end up near the middle of the
// point cloud tend to be central in the graph, so repeatedly taking the
// most central unchosen vertex yields a good seed set for influence
// maximization.
//
// # Architecture
//
//	graph file / generator
//	         ↓
//	    [graph] (validated undirected graph)
//	         ↓
//	    [embed/spectral] (Laplacian eigenvector start)
//	         ↓
//	    [embed/layout] + [embed/knn] (force iterations)
//	         ↓
//	    [embed/seeds] (greedy geometric selection)
//	         ↓
//	    embedding JSON, seeds, [centrality] and [influence] reports
//
// # Quick Start
//
//	g, _ := graph.BarabasiAlbert(1000, 3, 1)
//	res, err := embed.SelectSeeds(g, embed.DefaultConfig(), 10, 0, embed.Options{Seed: 42})
//	if err != nil {
//	    return err
//	}
//	spread, _ := influence.Estimate(g, res.Seeds, influence.Options{P: 0.05})
//
// # Main Packages
//
// [graph] - Graph construction, validation, generators and the JSON and
// edge-list formats, plus the serialized [graph.Embedding].
//
// [embed] - One-call embedding and seed selection. Subpackages hold the
// spectral initializer, the exact kNN index, the layout engine and the
// seed selector.
//
// [pipeline] - Parameter files, validation and cached runs shared by the
// CLI. Results are keyed by graph hash and parameters.
//
// [cache] - File, Redis and null result caches.
//
// [centrality] - Classical centrality measures and their rank correlation
// with embedding radii.
//
// [influence] - Independent-cascade spread estimation and baseline seed
// selectors.
//
// [observability] and [metrics] - Progress hooks and their Prometheus
// implementation.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/graph
// [graph.Embedding]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/graph#Embedding
// [embed]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/embed
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/cache
// [centrality]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/centrality
// [influence]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/influence
// [observability]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/observability
// [metrics]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/metrics
//
// [embed/spectral]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/embed/spectral
// [embed/layout]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/embed/layout
// [embed/knn]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/embed/knn
// [embed/seeds]: https://pkg.go.dev/github.com/matzehuels/graphem/pkg/embed/seeds
package pkg
