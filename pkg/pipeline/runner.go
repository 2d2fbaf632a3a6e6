package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/graphem/pkg/cache"
	"github.com/matzehuels/graphem/pkg/embed"
	"github.com/matzehuels/graphem/pkg/graph"
	"github.com/matzehuels/graphem/pkg/observability"
)

// Runner executes embed and seeds runs with caching. It holds no run state
// and may be shared between goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Embed lays out g, returning a cached embedding when one exists for the
// same graph and options.
func (r *Runner) Embed(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	return r.run(ctx, g, opts, StageEmbed, func(graphHash string) string {
		return r.Keyer.EmbedKey(graphHash, opts.EmbedKeyOpts())
	}, func(logger *log.Logger) (*graph.Embedding, []float64, error) {
		res, err := embed.Embed(g, opts.Config, r.embedOptions(opts, logger))
		if err != nil {
			return nil, nil, err
		}
		emb := newEmbedding(opts, graph.Rows(res.Positions), res.Notices)
		emb.Iterations = res.Iterations
		return emb, nil, nil
	})
}

// SelectSeeds lays out g and selects opts.K seeds, returning a cached
// result when one exists.
func (r *Runner) SelectSeeds(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	ranker, err := opts.ranker()
	if err != nil {
		return nil, err
	}
	return r.run(ctx, g, opts, StageSeeds, func(graphHash string) string {
		return r.Keyer.SeedsKey(graphHash, opts.SeedsKeyOpts())
	}, func(logger *log.Logger) (*graph.Embedding, []float64, error) {
		eo := r.embedOptions(opts, logger)
		eo.Ranker = ranker
		res, err := embed.SelectSeeds(g, opts.Config, opts.K, opts.Rounds, eo)
		if err != nil {
			return nil, nil, err
		}
		emb := newEmbedding(opts, graph.Rows(res.Positions), res.Notices)
		emb.Seeds = res.Seeds
		emb.Iterations = res.Rounds * opts.Iterations
		return emb, res.Scores, nil
	})
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) prepare(opts *Options) error {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

type computeFunc func(logger *log.Logger) (*graph.Embedding, []float64, error)

// run is the cache-aside skeleton shared by Embed and SelectSeeds. Cache
// failures are logged and never fail the run.
func (r *Runner) run(ctx context.Context, g *graph.Graph, opts Options, stage string, keyOf func(string) string, compute computeFunc) (_ *Result, err error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := opts.Logger.With("run", runID[:8])
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()

	hooks.OnStageStart(ctx, stage, g.N())
	res := &Result{}
	defer func() {
		res.Duration = time.Since(start)
		hooks.OnStageComplete(ctx, stage, res.Duration, res.CacheHit, err)
	}()

	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}
	res.GraphHash = cache.Hash(graphData)
	key := keyOf(res.GraphHash)

	if !opts.Refresh {
		if emb, ok := r.lookup(ctx, key, g.N(), logger); ok {
			cacheHooks.OnCacheHit(ctx, stage)
			emb.RunID = runID
			res.Embedding, res.CacheHit = emb, true
			logger.Info("cache hit", "stage", stage, "n", g.N())
			return res, nil
		}
		cacheHooks.OnCacheMiss(ctx, stage)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb, scores, err := compute(logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stage, err)
	}
	emb.RunID = runID
	res.Embedding, res.Scores = emb, scores

	if data, err := graph.MarshalEmbedding(emb); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLEmbedding); err != nil {
			logger.Debug("cache write failed", "stage", stage, "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, stage, len(data))
		}
	}

	logger.Info("computed "+stage, "n", g.N(), "m", g.M(), "dim", opts.Dimension, "duration", time.Since(start))
	return res, nil
}

// lookup returns a cached embedding for key if one decodes cleanly and
// matches the graph's vertex count.
func (r *Runner) lookup(ctx context.Context, key string, n int, logger *log.Logger) (*graph.Embedding, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Debug("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	emb, err := graph.UnmarshalEmbedding(data)
	if err != nil || emb.N != n {
		logger.Debug("discarding unusable cache entry", "key", key)
		return nil, false
	}
	return emb, true
}

func (r *Runner) embedOptions(opts Options, logger *log.Logger) embed.Options {
	return embed.Options{
		Seed:      opts.Seed,
		Logger:    logger,
		Init:      opts.Init,
		Workers:   opts.Workers,
		BlockSize: opts.BlockSize,
		Momentum:  opts.Momentum,
	}
}

func newEmbedding(opts Options, positions [][]float64, notices []embed.Notice) *graph.Embedding {
	emb := &graph.Embedding{
		N:         len(positions),
		Dimension: opts.Dimension,
		Positions: positions,
		Config:    opts.Params(),
		Seed:      opts.Seed,
	}
	for _, n := range notices {
		emb.Notices = append(emb.Notices, graph.Notice{Code: string(n.Code), Message: n.Message})
	}
	return emb
}
