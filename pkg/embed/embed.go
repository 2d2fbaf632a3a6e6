// Package embed computes force-directed graph embeddings and selects
// influence-maximization seeds from them.
//
// It ties together the spectral initializer, the layout engine and the
// seed selector:
//
//	g, _ := graph.BarabasiAlbert(500, 3, 1)
//	res, err := embed.Embed(g, embed.DefaultConfig(), embed.Options{Seed: 42})
//	// res.Positions is a 500 x 3 *mat.Dense
//
//	sel, err := embed.SelectSeeds(g, embed.DefaultConfig(), 10, 0, embed.Options{Seed: 42})
//	// sel.Seeds holds 10 vertex ids, most central first
//
// # Determinism
//
// All randomness comes from Options.Seed. The same graph, configuration and
// seed always give the same coordinates and seeds, regardless of
// Options.Workers.
//
// # Errors and Notices
//
// Invalid configuration is rejected before any computation with an
// INVALID_CONFIG error. Degenerate but usable input (a disconnected graph,
// knn_k above n-1, too few rounds) is handled and reported as a [Notice].
// A run that produces a non-finite coordinate returns a
// *layout.DivergenceError.
package embed

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/graphem/pkg/embed/layout"
	"github.com/matzehuels/graphem/pkg/embed/seeds"
	"github.com/matzehuels/graphem/pkg/embed/spectral"
	"github.com/matzehuels/graphem/pkg/graph"
	"github.com/matzehuels/graphem/pkg/observability"
)

// Config is the six-parameter layout configuration.
type Config = layout.Config

// Notice is a non-fatal degenerate-input report.
type Notice = layout.Notice

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config { return layout.DefaultConfig() }

// Options carries everything besides the six layout parameters.
type Options struct {
	// Seed drives the initializer jitter and fallback.
	Seed uint64

	// Logger receives progress at DEBUG and notices at WARN. Nil discards.
	Logger *log.Logger

	// Init, when set, replaces the spectral initializer. It must be
	// n x Dimension and finite.
	Init *mat.Dense

	// Ranker scores seed candidates. Nil means seeds.CentroidDistance.
	Ranker seeds.Ranker

	// Workers and BlockSize configure the neighbour table rebuild.
	Workers   int
	BlockSize int

	// Momentum adds that fraction of the previous displacement.
	Momentum float64
}

// Result is the output of [Embed].
type Result struct {
	Positions  *mat.Dense
	Notices    []Notice
	Iterations int
}

// SeedResult is the output of [SelectSeeds].
type SeedResult struct {
	Seeds     []int
	Scores    []float64
	Positions *mat.Dense
	Notices   []Notice
	Rounds    int
}

// Embed lays out g: spectral initialization followed by one engine run.
func Embed(g *graph.Graph, cfg Config, opts Options) (*Result, error) {
	logger := loggerOf(opts)
	e, err := newEngine(g, cfg, opts, logger)
	if err != nil {
		return nil, err
	}
	init, notices, err := initialPositions(g, e.Config(), opts, logger)
	if err != nil {
		return nil, err
	}
	notices = append(e.Notices(), notices...)

	start := time.Now()
	if err := e.Reset(init); err != nil {
		return nil, err
	}
	if err := e.Run(); err != nil {
		return nil, err
	}
	logger.Debug("embedding complete", "n", g.N(), "dim", e.Config().Dimension, "duration", time.Since(start))

	return &Result{
		Positions:  e.Positions(),
		Notices:    notices,
		Iterations: e.Iteration(),
	}, nil
}

// SelectSeeds lays out g and greedily selects k seeds in at most rounds
// engine runs (rounds == 0 means k).
func SelectSeeds(g *graph.Graph, cfg Config, k, rounds int, opts Options) (*SeedResult, error) {
	logger := loggerOf(opts)
	e, err := newEngine(g, cfg, opts, logger)
	if err != nil {
		return nil, err
	}
	init, notices, err := initialPositions(g, e.Config(), opts, logger)
	if err != nil {
		return nil, err
	}
	notices = append(e.Notices(), notices...)

	sel := seeds.New(seeds.Options{Ranker: opts.Ranker, Logger: logger})
	res, err := sel.Select(e, init, k, rounds)
	if err != nil {
		return nil, err
	}
	return &SeedResult{
		Seeds:     res.Seeds,
		Scores:    res.Scores,
		Positions: res.Positions,
		Notices:   append(notices, res.Notices...),
		Rounds:    res.Rounds,
	}, nil
}

func loggerOf(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return log.New(io.Discard)
}

func newEngine(g *graph.Graph, cfg Config, opts Options, logger *log.Logger) (*layout.Engine, error) {
	return layout.NewEngine(g, cfg, layout.Options{
		Logger:    logger,
		Workers:   opts.Workers,
		BlockSize: opts.BlockSize,
		Momentum:  opts.Momentum,
	})
}

// initialPositions returns opts.Init or the spectral start, with a
// spectral_fallback notice when the cube was used.
func initialPositions(g *graph.Graph, cfg Config, opts Options, logger *log.Logger) (*mat.Dense, []Notice, error) {
	if opts.Init != nil {
		return opts.Init, nil, nil
	}
	res, err := spectral.Initialize(g, cfg.Dimension, spectral.Options{
		Scale:  cfg.LMin,
		Jitter: spectral.DefaultJitter,
		Seed:   opts.Seed,
	})
	if err != nil {
		return nil, nil, err
	}
	if !res.Fallback {
		return res.Positions, nil, nil
	}
	n := Notice{Code: layout.NoticeSpectralFallback, Message: res.Reason}
	logger.Warn("degenerate input", "code", n.Code, "detail", n.Message)
	observability.Embedding().OnNotice(string(n.Code), n.Message)
	return res.Positions, []Notice{n}, nil
}
