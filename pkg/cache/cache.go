// Package cache stores pipeline results keyed by their inputs.
//
// Embeddings are pure functions of (graph, config, seed), so a result keyed
// by a hash of those inputs never goes stale; TTLs exist only to bound disk
// and memory use. Three backends are provided:
//
//   - [FileCache] for the CLI, under the user cache directory
//   - [RedisCache] for shared deployments
//   - [NullCache] when caching is disabled
//
// Keys come from a [Keyer], so callers never build key strings by hand:
//
//	k := cache.NewDefaultKeyer()
//	key := k.EmbedKey(cache.Hash(graphJSON), cache.EmbedKeyOpts{...})
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	TTLEmbedding = 30 * 24 * time.Hour
	TTLSeeds     = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
// A miss is reported as (nil, false, nil), never as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// EmbedKeyOpts are the inputs, besides the graph, that determine an
// embedding.
type EmbedKeyOpts struct {
	Dimension  int     `json:"dimension"`
	LMin       float64 `json:"l_min"`
	KAttr      float64 `json:"k_attr"`
	KInter     float64 `json:"k_inter"`
	KnnK       int     `json:"knn_k"`
	Iterations int     `json:"num_iterations"`
	Momentum   float64 `json:"momentum,omitempty"`
	Seed       uint64  `json:"seed"`

	// InitHash is the hash of caller-supplied initial positions, empty when
	// the spectral initializer is used.
	InitHash string `json:"init_hash,omitempty"`
}

// SeedsKeyOpts extends EmbedKeyOpts with the selector inputs.
type SeedsKeyOpts struct {
	EmbedKeyOpts
	K      int    `json:"k"`
	Rounds int    `json:"rounds"`
	Ranker string `json:"ranker"`
}

// Keyer derives cache keys.
type Keyer interface {
	EmbedKey(graphHash string, opts EmbedKeyOpts) string
	SeedsKey(graphHash string, opts SeedsKeyOpts) string
}

// DefaultKeyer hashes every input into a fixed-length key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// EmbedKey returns "embed:<sha256>".
func (DefaultKeyer) EmbedKey(graphHash string, opts EmbedKeyOpts) string {
	return hashKey("embed", graphHash, opts)
}

// SeedsKey returns "seeds:<sha256>".
func (DefaultKeyer) SeedsKey(graphHash string, opts SeedsKeyOpts) string {
	return hashKey("seeds", graphHash, opts)
}

var _ Keyer = DefaultKeyer{}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

var (
	_ Clearer = (*FileCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
