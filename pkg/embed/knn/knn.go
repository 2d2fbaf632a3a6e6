// Package knn builds exact k-nearest-neighbour tables over a coordinate
// matrix.
//
// Every vertex is compared against every other vertex, so a [Table] is exact
// regardless of how the points are distributed. Work is split into blocks
// of rows that run in parallel; each row is written by exactly one block,
// which keeps the result independent of scheduling.
//
//	ix := knn.New(knn.Options{BlockSize: 1024})
//	t, err := ix.Build(coords, 15)
//	for _, nb := range t.Neighbors(v) {
//	    // nb.ID, nb.Dist in ascending distance order
//	}
package knn

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

// DefaultBlockSize is the number of rows handled per work unit.
const DefaultBlockSize = 1024

// Neighbor is one entry of a neighbour list.
type Neighbor struct {
	ID   int
	Dist float64
}

// Table holds exactly K neighbours for each of N vertices, sorted by
// ascending distance with ties broken by ascending id. A vertex never
// appears in its own list.
type Table struct {
	n, k    int
	entries []Neighbor
}

// N returns the number of vertices.
func (t *Table) N() int { return t.n }

// K returns the per-vertex neighbour count after clamping.
func (t *Table) K() int { return t.k }

// Neighbors returns the neighbour list of v. Callers must not modify the
// returned slice; it is overwritten by the next build into the same table.
func (t *Table) Neighbors(v int) []Neighbor {
	return t.entries[v*t.k : (v+1)*t.k]
}

// IDs returns the neighbour ids of v as a new slice.
func (t *Table) IDs(v int) []int {
	nbrs := t.Neighbors(v)
	ids := make([]int, len(nbrs))
	for i, nb := range nbrs {
		ids[i] = nb.ID
	}
	return ids
}

// Options configures an Index.
type Options struct {
	// BlockSize is the number of rows per work unit. Zero means
	// DefaultBlockSize.
	BlockSize int

	// Workers bounds the number of blocks processed concurrently. Zero
	// means GOMAXPROCS.
	Workers int
}

// Index builds neighbour tables. It holds no per-build state and is safe
// for concurrent use.
type Index struct {
	blockSize int
	workers   int
}

// New returns an Index with defaults applied to opts.
func New(opts Options) *Index {
	ix := &Index{blockSize: opts.BlockSize, workers: opts.Workers}
	if ix.blockSize <= 0 {
		ix.blockSize = DefaultBlockSize
	}
	if ix.workers <= 0 {
		ix.workers = runtime.GOMAXPROCS(0)
	}
	return ix
}

// ClampK returns min(k, n-1), floored at zero.
func ClampK(k, n int) int {
	return max(min(k, n-1), 0)
}

// Build returns the exact neighbour table of coords with k neighbours per
// row. k above n-1 is clamped; negative k is a configuration error.
func (ix *Index) Build(coords *mat.Dense, k int) (*Table, error) {
	t := &Table{}
	if err := ix.BuildInto(t, coords, k); err != nil {
		return nil, err
	}
	return t, nil
}

// BuildInto rebuilds t in place, reusing its storage when the shape
// matches. The layout engine calls it once per iteration.
func (ix *Index) BuildInto(t *Table, coords *mat.Dense, k int) error {
	if k < 0 {
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "knn_k must be >= 0, got %d", k)
	}
	n, _ := coords.Dims()
	k = ClampK(k, n)

	t.n, t.k = n, k
	if cap(t.entries) >= n*k {
		t.entries = t.entries[:n*k]
	} else {
		t.entries = make([]Neighbor, n*k)
	}
	if k == 0 {
		return nil
	}

	raw := coords.RawMatrix()
	blocks := (n + ix.blockSize - 1) / ix.blockSize
	if blocks == 1 || ix.workers == 1 {
		for lo := 0; lo < n; lo += ix.blockSize {
			fillBlock(t, raw, lo, min(lo+ix.blockSize, n))
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(ix.workers)
	for lo := 0; lo < n; lo += ix.blockSize {
		hi := min(lo+ix.blockSize, n)
		g.Go(func() error {
			fillBlock(t, raw, lo, hi)
			return nil
		})
	}
	return g.Wait()
}

// fillBlock writes the neighbour lists of rows lo..hi-1. Lists are built
// on squared distances; the square root is taken once per kept entry.
func fillBlock(t *Table, raw blas64.General, lo, hi int) {
	n, k, d := t.n, t.k, raw.Cols
	for i := lo; i < hi; i++ {
		xi := raw.Data[i*raw.Stride : i*raw.Stride+d]
		best := t.entries[i*k : i*k : (i+1)*k]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			xj := raw.Data[j*raw.Stride : j*raw.Stride+d]
			var d2 float64
			for c, a := range xi {
				diff := a - xj[c]
				d2 += diff * diff
			}
			best = insert(best, k, Neighbor{ID: j, Dist: d2})
		}
		for c := range best {
			best[c].Dist = math.Sqrt(best[c].Dist)
		}
	}
}

// insert adds nb to the sorted list best (capacity k) if it ranks among
// the k smallest by (Dist, ID). Candidates arrive in ascending id order, so
// an equal distance never displaces an existing entry.
func insert(best []Neighbor, k int, nb Neighbor) []Neighbor {
	if len(best) == k {
		if nb.Dist >= best[k-1].Dist {
			return best
		}
		best = best[:k-1]
	}
	pos := len(best)
	for pos > 0 && best[pos-1].Dist > nb.Dist {
		pos--
	}
	best = append(best, Neighbor{})
	copy(best[pos+1:], best[pos:])
	best[pos] = nb
	return best
}
