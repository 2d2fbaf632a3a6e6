// Package layout implements the force-directed layout engine.
//
// Each iteration moves every vertex by the sum of two closed-form forces,
// computed from the previous iteration's coordinates only:
//
//   - attraction along every edge, of magnitude k_attr·(ℓ − L_min), split
//     equally between the two endpoints;
//   - repulsion from each of the vertex's knn_k nearest neighbours, of
//     magnitude k_inter / max(ℓ, ε) with ε = Epsilon·L_min.
//
// The engine runs a fixed number of iterations; there is no convergence
// threshold. A non-finite coordinate stops the run with a
// [*DivergenceError] instead of being clamped.
//
// # States
//
//	New --Reset--> Initialized --Run--> Running --> Converged
//	                    ^                    \
//	                    +------Reset----------+--> Diverged
//
// Run is valid only in Initialized; running again needs another Reset.
//
// # Concurrency
//
// An Engine is not safe for concurrent use. The only parallelism is inside
// the neighbour table rebuild.
package layout

import (
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/graphem/pkg/embed/knn"
	gerrors "github.com/matzehuels/graphem/pkg/errors"
	"github.com/matzehuels/graphem/pkg/graph"
	"github.com/matzehuels/graphem/pkg/observability"
)

const (
	// DefaultEpsilon is the repulsion distance floor as a fraction of LMin.
	DefaultEpsilon = 0.01

	// DefaultLogEvery is the debug progress interval in iterations.
	DefaultLogEvery = 10
)

// State is the lifecycle phase of an Engine.
type State int

const (
	StateNew State = iota
	StateInitialized
	StateRunning
	StateConverged
	StateDiverged
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateConverged:
		return "converged"
	case StateDiverged:
		return "diverged"
	default:
		return "unknown"
	}
}

// Options tunes an Engine beyond the six layout parameters.
type Options struct {
	// Logger receives debug progress and notice warnings. Nil discards.
	Logger *log.Logger

	// Hooks receives run events. Nil uses observability.Embedding().
	Hooks observability.EmbeddingHooks

	// Workers and BlockSize configure the neighbour table rebuild.
	Workers   int
	BlockSize int

	// Epsilon is the repulsion distance floor as a fraction of LMin. Zero
	// means DefaultEpsilon.
	Epsilon float64

	// Momentum in [0, 1) adds that fraction of the previous displacement.
	// Zero gives the plain update.
	Momentum float64

	// LogEvery is the debug progress interval. Zero means DefaultLogEvery.
	LogEvery int
}

// Engine runs the force-directed simulation for one graph.
type Engine struct {
	g       *graph.Graph
	cfg     Config
	notices []Notice
	eps     float64
	opts    Options
	logger  *log.Logger
	hooks   observability.EmbeddingHooks

	index *knn.Index
	table knn.Table

	state     State
	iteration int
	pinned    []bool

	cur, next *mat.Dense
	vel       *mat.Dense
	attr, rep []float64
}

// NewEngine validates cfg, clamps it for g and returns an engine in
// StateNew. Clamping notices are logged at WARN, passed to the hooks, and
// kept for [Engine.Notices].
func NewEngine(g *graph.Graph, cfg Config, opts Options) (*Engine, error) {
	if g == nil {
		return nil, gerrors.New(gerrors.ErrCodeInvalidInput, "graph is nil")
	}
	normalized, notices, err := cfg.Normalize(g.N())
	if err != nil {
		return nil, err
	}
	if opts.Epsilon == 0 {
		opts.Epsilon = DefaultEpsilon
	}
	if err := gerrors.ValidatePositive("epsilon", opts.Epsilon); err != nil {
		return nil, err
	}
	if err := gerrors.ValidateNonNegative("momentum", opts.Momentum); err != nil {
		return nil, err
	}
	if opts.Momentum >= 1 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "momentum must be < 1, got %v", opts.Momentum)
	}
	if opts.LogEvery <= 0 {
		opts.LogEvery = DefaultLogEvery
	}

	e := &Engine{
		g:       g,
		cfg:     normalized,
		notices: notices,
		eps:     opts.Epsilon * normalized.LMin,
		opts:    opts,
		logger:  opts.Logger,
		hooks:   opts.Hooks,
		index:   knn.New(knn.Options{Workers: opts.Workers, BlockSize: opts.BlockSize}),
		pinned:  make([]bool, g.N()),
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	if e.hooks == nil {
		e.hooks = observability.Embedding()
	}
	for _, n := range notices {
		e.logger.Warn("degenerate input", "code", n.Code, "detail", n.Message)
		e.hooks.OnNotice(string(n.Code), n.Message)
	}
	return e, nil
}

// Config returns the normalized configuration the engine runs with.
func (e *Engine) Config() Config { return e.cfg }

// Notices returns the notices produced by normalization.
func (e *Engine) Notices() []Notice { return slices.Clone(e.notices) }

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Iteration returns the number of completed iterations of the current run.
func (e *Engine) Iteration() int { return e.iteration }

// Graph returns the graph being laid out.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Reset copies init as the starting coordinates and enters
// StateInitialized. init must be n x Dimension and finite. Pins are kept.
func (e *Engine) Reset(init *mat.Dense) error {
	if init == nil {
		return gerrors.Wrap(gerrors.ErrCodeInvalidConfig, ErrShape, "starting coordinates are nil")
	}
	n, d := e.g.N(), e.cfg.Dimension
	if r, c := init.Dims(); r != n || c != d {
		return gerrors.Wrap(gerrors.ErrCodeInvalidConfig, ErrShape, "got %dx%d, want %dx%d", r, c, n, d)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			if v := init.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return gerrors.New(gerrors.ErrCodeInvalidConfig, "starting coordinate (%d,%d) is %v", i, j, v)
			}
		}
	}

	if e.cur == nil {
		e.cur = mat.NewDense(n, d, nil)
		e.next = mat.NewDense(n, d, nil)
		e.attr = make([]float64, n*d)
		e.rep = make([]float64, n*d)
	}
	e.cur.Copy(init)
	if e.vel != nil {
		e.vel.Zero()
	}
	e.iteration = 0
	e.state = StateInitialized
	return nil
}

// Pin fixes vertices at their current coordinates for every later
// iteration, across Resets, until [Engine.Unpin].
func (e *Engine) Pin(ids ...int) error {
	for _, v := range ids {
		if v < 0 || v >= e.g.N() {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "pin: vertex %d out of range", v)
		}
	}
	for _, v := range ids {
		e.pinned[v] = true
	}
	return nil
}

// Unpin releases every pinned vertex.
func (e *Engine) Unpin() { clear(e.pinned) }

// Pinned reports whether v is pinned.
func (e *Engine) Pinned(v int) bool { return e.pinned[v] }

// Positions returns a copy of the current coordinates, or nil before the
// first Reset.
func (e *Engine) Positions() *mat.Dense {
	if e.cur == nil {
		return nil
	}
	return mat.DenseCopyOf(e.cur)
}

// Run executes exactly Iterations steps from the Reset coordinates. On
// success the engine is Converged; on divergence it returns a
// [*DivergenceError] and the coordinates of the last finite iteration are
// kept.
func (e *Engine) Run() error {
	if e.state != StateInitialized {
		return gerrors.Wrap(gerrors.ErrCodeInvalidInput, ErrNotInitialized, "run in state %s", e.state)
	}
	e.state = StateRunning
	n, d, total := e.g.N(), e.cfg.Dimension, e.cfg.Iterations
	e.logger.Debug("layout started", "n", n, "m", e.g.M(), "dim", d, "iterations", total)
	e.hooks.OnEmbedStart(n, e.g.M(), d, total)
	start := time.Now()

	for it := 1; it <= total; it++ {
		maxStep, err := e.step(it)
		if err != nil {
			e.state = StateDiverged
			e.logger.Debug("layout diverged", "err", err)
			e.hooks.OnEmbedComplete(e.iteration, time.Since(start), err)
			return err
		}
		e.iteration = it
		e.hooks.OnIteration(it, total, maxStep)
		if it%e.opts.LogEvery == 0 || it == total {
			e.logger.Debug("iteration", "iter", it, "of", total, "max_step", maxStep)
		}
	}

	e.state = StateConverged
	dur := time.Since(start)
	e.logger.Debug("layout finished", "iterations", total, "duration", dur)
	e.hooks.OnEmbedComplete(total, dur, nil)
	return nil
}

// step reads e.cur, writes e.next, and swaps them when every new
// coordinate is finite. It returns the largest displacement norm.
func (e *Engine) step(it int) (float64, error) {
	n, d := e.g.N(), e.cfg.Dimension
	clear(e.attr)
	clear(e.rep)
	cur := e.cur.RawMatrix()

	// Attraction: each endpoint covers half of k_attr·(ℓ − L) along the edge.
	if e.cfg.KAttr != 0 {
		for _, ed := range e.g.Edges() {
			xu := cur.Data[ed.U*cur.Stride : ed.U*cur.Stride+d]
			xv := cur.Data[ed.V*cur.Stride : ed.V*cur.Stride+d]
			l := dist(xu, xv)
			if l == 0 {
				continue
			}
			f := 0.5 * e.cfg.KAttr * (l - e.cfg.LMin) / l
			au := e.attr[ed.U*d : ed.U*d+d]
			av := e.attr[ed.V*d : ed.V*d+d]
			for c := 0; c < d; c++ {
				s := f * (xv[c] - xu[c])
				au[c] += s
				av[c] -= s
			}
		}
	}

	// Repulsion: v is pushed away from each of its nearest neighbours.
	if e.cfg.KInter != 0 && e.cfg.KnnK > 0 {
		if err := e.index.BuildInto(&e.table, e.cur, e.cfg.KnnK); err != nil {
			return 0, err
		}
		for v := 0; v < n; v++ {
			xv := cur.Data[v*cur.Stride : v*cur.Stride+d]
			rv := e.rep[v*d : v*d+d]
			for _, nb := range e.table.Neighbors(v) {
				mag := e.cfg.KInter / max(nb.Dist, e.eps)
				if nb.Dist == 0 {
					axis := (nb.ID + v) % d
					if v > nb.ID {
						rv[axis] += mag
					} else {
						rv[axis] -= mag
					}
					continue
				}
				xu := cur.Data[nb.ID*cur.Stride : nb.ID*cur.Stride+d]
				f := mag / nb.Dist
				for c := 0; c < d; c++ {
					rv[c] += f * (xv[c] - xu[c])
				}
			}
		}
	}

	if e.opts.Momentum > 0 && e.vel == nil {
		e.vel = mat.NewDense(n, d, nil)
	}

	next := e.next.RawMatrix()
	var maxStep float64
	for v := 0; v < n; v++ {
		xv := cur.Data[v*cur.Stride : v*cur.Stride+d]
		out := next.Data[v*next.Stride : v*next.Stride+d]
		if e.pinned[v] {
			copy(out, xv)
			if e.vel != nil {
				for c := 0; c < d; c++ {
					e.vel.Set(v, c, 0)
				}
			}
			continue
		}
		var step2 float64
		for c := 0; c < d; c++ {
			disp := e.attr[v*d+c] + e.rep[v*d+c]
			if e.vel != nil {
				disp += e.opts.Momentum * e.vel.At(v, c)
				e.vel.Set(v, c, disp)
			}
			out[c] = xv[c] + disp
			step2 += disp * disp
		}
		for _, x := range out {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return 0, newDivergenceError(it, v, e.blame(v))
			}
		}
		maxStep = max(maxStep, math.Sqrt(step2))
	}

	e.cur, e.next = e.next, e.cur
	return maxStep, nil
}

// blame picks the force term responsible for vertex v going non-finite:
// the one that is itself non-finite, else the larger in norm.
func (e *Engine) blame(v int) Term {
	d := e.cfg.Dimension
	a := norm(e.attr[v*d : v*d+d])
	r := norm(e.rep[v*d : v*d+d])
	switch {
	case !isFinite(a):
		return TermAttraction
	case !isFinite(r):
		return TermRepulsion
	case r > a:
		return TermRepulsion
	default:
		return TermAttraction
	}
}

func dist(a, b []float64) float64 {
	var s float64
	for i := range a {
		diff := a[i] - b[i]
		s += diff * diff
	}
	return math.Sqrt(s)
}

func norm(a []float64) float64 {
	var s float64
	for _, x := range a {
		s += x * x
	}
	return math.Sqrt(s)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
