// Package influence estimates independent-cascade spread by Monte Carlo
// simulation and provides baseline seed selectors to compare embedding
// seeds against.
//
// In the independent cascade model every vertex activated in one step
// gets a single chance to activate each inactive neighbour, succeeding
// with probability P. The spread of a seed set is the expected number of
// vertices active when the cascade stops, seeds included.
//
//	s, err := influence.Estimate(g, seeds, influence.Options{P: 0.1, Trials: 200, Seed: 1})
//	fmt.Printf("%.1f ± %.1f\n", s.Mean, s.StdDev)
package influence

import (
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/graphem/internal/rng"
	gerrors "github.com/matzehuels/graphem/pkg/errors"
	"github.com/matzehuels/graphem/pkg/graph"
)

// Defaults.
const (
	DefaultP      = 0.1
	DefaultTrials = 200
)

// Options configures a simulation.
type Options struct {
	// P is the per-edge activation probability.
	P float64

	// Trials is the number of simulated cascades. Zero means
	// DefaultTrials.
	Trials int

	// Seed makes the simulation reproducible. Trial i always uses the
	// same random stream, independent of Workers.
	Seed uint64

	// Workers bounds parallel trials. Zero means GOMAXPROCS.
	Workers int
}

func (o *Options) normalize() error {
	if o.Trials == 0 {
		o.Trials = DefaultTrials
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if err := gerrors.ValidateProbability("p", o.P); err != nil {
		return err
	}
	if o.Trials < 0 {
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "trials must be >= 1, got %d", o.Trials)
	}
	return nil
}

// Spread summarizes the simulated cascade sizes.
type Spread struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Trials int     `json:"trials"`
}

// Estimate simulates opts.Trials cascades from seeds.
func Estimate(g *graph.Graph, seeds []int, opts Options) (Spread, error) {
	if err := opts.normalize(); err != nil {
		return Spread{}, err
	}
	if err := checkSeeds(g, seeds); err != nil {
		return Spread{}, err
	}
	sizes := simulate(g, seeds, opts)
	mean, std := stat.MeanStdDev(sizes, nil)
	if len(sizes) == 1 {
		std = 0
	}
	return Spread{Mean: mean, StdDev: std, Trials: len(sizes)}, nil
}

// simulate returns the cascade size of every trial. Trials are split into
// contiguous chunks, one per worker, each with its own scratch space.
func simulate(g *graph.Graph, seeds []int, opts Options) []float64 {
	sizes := make([]float64, opts.Trials)
	chunk := (opts.Trials + opts.Workers - 1) / opts.Workers
	var eg errgroup.Group
	for lo := 0; lo < opts.Trials; lo += chunk {
		hi := min(lo+chunk, opts.Trials)
		eg.Go(func() error {
			c := newCascade(g.N())
			for i := lo; i < hi; i++ {
				sizes[i] = float64(c.run(g, seeds, opts.P, rng.Trial(opts.Seed, rng.StreamInfluence, i)))
			}
			return nil
		})
	}
	_ = eg.Wait()
	return sizes
}

// cascade holds reusable per-worker buffers. active[v] == epoch marks v
// active in the current trial, so buffers never need clearing.
type cascade struct {
	active   []int
	epoch    int
	frontier []int
	next     []int
}

func newCascade(n int) *cascade {
	return &cascade{active: make([]int, n)}
}

func (c *cascade) run(g *graph.Graph, seeds []int, p float64, r *rand.Rand) int {
	c.epoch++
	c.frontier = c.frontier[:0]
	for _, s := range seeds {
		if c.active[s] != c.epoch {
			c.active[s] = c.epoch
			c.frontier = append(c.frontier, s)
		}
	}
	total := len(c.frontier)
	for len(c.frontier) > 0 {
		c.next = c.next[:0]
		for _, u := range c.frontier {
			for _, v := range g.Neighbors(u) {
				if c.active[v] == c.epoch {
					continue
				}
				if r.Float64() < p {
					c.active[v] = c.epoch
					c.next = append(c.next, v)
				}
			}
		}
		total += len(c.next)
		c.frontier, c.next = c.next, c.frontier
	}
	return total
}

func checkSeeds(g *graph.Graph, seeds []int) error {
	seen := make(map[int]struct{}, len(seeds))
	for _, s := range seeds {
		if s < 0 || s >= g.N() {
			return gerrors.Wrap(gerrors.ErrCodeInvalidInput, graph.ErrVertexOutOfRange, "seed %d (n=%d)", s, g.N())
		}
		if _, dup := seen[s]; dup {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "duplicate seed %d", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}
