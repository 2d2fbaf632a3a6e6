package influence

import (
	"container/heap"

	"github.com/matzehuels/graphem/internal/rng"
	gerrors "github.com/matzehuels/graphem/pkg/errors"
	"github.com/matzehuels/graphem/pkg/graph"
)

// Greedy selects k seeds by simulated marginal gain, the classical
// baseline for influence maximization. It uses lazy re-evaluation
// (CELF): a vertex's stale gain is an upper bound on its current gain, so
// most vertices are never re-simulated. Every estimate uses the same
// trial streams, which keeps gains comparable.
func Greedy(g *graph.Graph, k int, opts Options) ([]int, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	if k < 0 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "k must be >= 0, got %d", k)
	}
	k = min(k, g.N())

	spread := func(seeds []int) float64 {
		var sum float64
		for _, s := range simulate(g, seeds, opts) {
			sum += s
		}
		return sum / float64(opts.Trials)
	}

	q := make(gainQueue, g.N())
	for v := range q {
		q[v] = gainItem{v: v, gain: spread([]int{v})}
	}
	heap.Init(&q)

	seeds := make([]int, 0, k)
	var current float64
	for len(seeds) < k {
		top := heap.Pop(&q).(gainItem)
		if top.round == len(seeds) {
			seeds = append(seeds, top.v)
			current += top.gain
			continue
		}
		top.gain = spread(append(seeds[:len(seeds):len(seeds)], top.v)) - current
		top.round = len(seeds)
		heap.Push(&q, top)
	}
	return seeds, nil
}

// Random returns k distinct vertices chosen uniformly, the lower baseline.
func Random(g *graph.Graph, k int, seed uint64) ([]int, error) {
	if k < 0 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "k must be >= 0, got %d", k)
	}
	k = min(k, g.N())
	perm := rng.Derive(seed, rng.StreamBaseline).Perm(g.N())
	return perm[:k], nil
}

type gainItem struct {
	v     int
	gain  float64
	round int // len(seeds) when gain was computed
}

// gainQueue is a max-heap on gain with ties broken by ascending id.
type gainQueue []gainItem

func (q gainQueue) Len() int { return len(q) }
func (q gainQueue) Less(i, j int) bool {
	if q[i].gain != q[j].gain {
		return q[i].gain > q[j].gain
	}
	return q[i].v < q[j].v
}
func (q gainQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *gainQueue) Push(x any)   { *q = append(*q, x.(gainItem)) }
func (q *gainQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
