// Package pipeline runs embeddings and seed selections with caching.
//
// The CLI and any long-running service share this package so both apply
// the same defaults, validation and cache keys. A [Runner] wraps the
// embed package: it hashes the graph, consults the cache, runs the engine
// on a miss, and returns a serializable [graph.Embedding].
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Embed(ctx, g, pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.CacheHit, res.Embedding.Positions[0])
//
// Options can be read from TOML, YAML or JSON parameter files with
// [LoadOptions]; flags then override individual fields.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/graphem/internal/validate"
	"github.com/matzehuels/graphem/pkg/cache"
	"github.com/matzehuels/graphem/pkg/embed/layout"
	"github.com/matzehuels/graphem/pkg/embed/seeds"
	"github.com/matzehuels/graphem/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Services
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultK is the default number of seeds to select.
	DefaultK = 10

	// DefaultRanker is the default seed ranker name.
	DefaultRanker = "centroid"
)

// Stage names reported to observability.PipelineHooks.
const (
	StageEmbed = "embed"
	StageSeeds = "seeds"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options holds the six layout parameters plus run settings. The layout
// parameters are inlined so parameter files stay flat:
//
//	dimension = 3
//	l_min = 10.0
//	seed = 7
//	k = 5
type Options struct {
	layout.Config `yaml:",inline"`

	// Seed drives every random choice of the run. Zero means DefaultSeed.
	Seed uint64 `toml:"seed" yaml:"seed" json:"seed"`

	// Momentum in [0, 1) adds that fraction of the previous displacement.
	Momentum float64 `toml:"momentum" yaml:"momentum" json:"momentum" validate:"gte=0,lt=1"`

	// Workers and BlockSize tune the neighbour table rebuild. They never
	// change results, so they are excluded from cache keys.
	Workers   int `toml:"workers" yaml:"workers" json:"workers" validate:"gte=0"`
	BlockSize int `toml:"block_size" yaml:"block_size" json:"block_size" validate:"gte=0"`

	// K and Rounds configure seed selection. Rounds == 0 means K.
	K      int    `toml:"k" yaml:"k" json:"k" validate:"gte=0"`
	Rounds int    `toml:"rounds" yaml:"rounds" json:"rounds" validate:"gte=0"`
	Ranker string `toml:"ranker" yaml:"ranker" json:"ranker" validate:"omitempty,oneof=centroid origin"`

	// Refresh skips the cache lookup but still stores the new result.
	Refresh bool `toml:"-" yaml:"-" json:"-"`

	// Init replaces the spectral initializer when set.
	Init *mat.Dense `toml:"-" yaml:"-" json:"-" validate:"-"`

	Logger *log.Logger `toml:"-" yaml:"-" json:"-" validate:"-"`
}

// DefaultOptions returns the standard configuration.
func DefaultOptions() Options {
	return Options{
		Config: layout.DefaultConfig(),
		Seed:   DefaultSeed,
		K:      DefaultK,
		Ranker: DefaultRanker,
	}
}

// SetDefaults fills run settings whose zero value means "unset". Layout
// parameters are never filled in: a zero Dimension or LMin is rejected by
// Validate, and zero Iterations, KnnK, KAttr and KInter are meaningful.
func (o *Options) SetDefaults() {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Ranker == "" {
		o.Ranker = DefaultRanker
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the layout parameters and the run settings. Failures
// are INVALID_CONFIG errors.
func (o *Options) Validate() error {
	if err := o.Config.Validate(); err != nil {
		return err
	}
	return validate.Struct(o)
}

// ranker resolves the ranker name.
func (o *Options) ranker() (seeds.Ranker, error) {
	return seeds.RankerByName(o.Ranker)
}

// EmbedKeyOpts returns the cache key inputs of an embed run.
func (o *Options) EmbedKeyOpts() cache.EmbedKeyOpts {
	k := cache.EmbedKeyOpts{
		Dimension:  o.Dimension,
		LMin:       o.LMin,
		KAttr:      o.KAttr,
		KInter:     o.KInter,
		KnnK:       o.KnnK,
		Iterations: o.Iterations,
		Momentum:   o.Momentum,
		Seed:       o.Seed,
	}
	if o.Init != nil {
		k.InitHash = cache.HashFloats(graph.Rows(o.Init))
	}
	return k
}

// SeedsKeyOpts returns the cache key inputs of a seeds run.
func (o *Options) SeedsKeyOpts() cache.SeedsKeyOpts {
	return cache.SeedsKeyOpts{
		EmbedKeyOpts: o.EmbedKeyOpts(),
		K:            o.K,
		Rounds:       o.Rounds,
		Ranker:       o.Ranker,
	}
}

// Params converts the layout parameters to their serialized form.
func (o *Options) Params() graph.Params {
	return graph.Params{
		Dimension:  o.Dimension,
		LMin:       o.LMin,
		KAttr:      o.KAttr,
		KInter:     o.KInter,
		KnnK:       o.KnnK,
		Iterations: o.Iterations,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result is the output of a Runner call.
type Result struct {
	// Embedding is the serializable output, with RunID set.
	Embedding *graph.Embedding

	// Scores holds the ranker score of each selected seed. It is nil on a
	// cache hit.
	Scores []float64

	// GraphHash is the SHA-256 of the graph's JSON form.
	GraphHash string

	// CacheHit reports whether Embedding came from the cache.
	CacheHit bool

	// Duration is the wall time of the call.
	Duration time.Duration
}
