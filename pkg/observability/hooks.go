// Package observability provides hooks for metrics, progress and tracing.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about layout runs, seed selection, pipeline
// stages and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the embedding packages
// never import a metrics backend. pkg/metrics provides a Prometheus
// implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := metrics.New()
//	    observability.SetEmbeddingHooks(m)
//	    observability.SetCacheHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Embedding().OnEmbedStart(n, m, dim, iterations)
//	// ... iterate ...
//	observability.Embedding().OnEmbedComplete(iterations, duration, err)
//
// The layout engine runs without a context, so the embedding and seed hooks
// take none. Registration is expected once, before any run starts.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Embedding Hooks
// =============================================================================

// EmbeddingHooks receives events from the force-directed layout engine.
type EmbeddingHooks interface {
	// OnEmbedStart is called when a run leaves the Initialized state.
	OnEmbedStart(n, m, dim, iterations int)

	// OnIteration is called after every completed iteration. maxStep is the
	// largest displacement norm applied in that iteration.
	OnIteration(iter, total int, maxStep float64)

	// OnEmbedComplete is called once per run, with the error that ended it.
	OnEmbedComplete(iterations int, duration time.Duration, err error)

	// OnNotice reports a non-fatal degenerate-input notice.
	OnNotice(code, message string)
}

// =============================================================================
// Seed Hooks
// =============================================================================

// SeedHooks receives events from the seed selector.
type SeedHooks interface {
	// OnRoundComplete is called after a round commits seed with the given
	// ranker score.
	OnRoundComplete(round, seed int, score float64)

	// OnSelectComplete is called once per selection.
	OnSelectComplete(seeds []int, rounds int, duration time.Duration, err error)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the pipeline runner.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage string, n int)
	OnStageComplete(ctx context.Context, stage string, duration time.Duration, cached bool, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEmbeddingHooks is a no-op implementation of EmbeddingHooks.
type NoopEmbeddingHooks struct{}

func (NoopEmbeddingHooks) OnEmbedStart(int, int, int, int)           {}
func (NoopEmbeddingHooks) OnIteration(int, int, float64)             {}
func (NoopEmbeddingHooks) OnEmbedComplete(int, time.Duration, error) {}
func (NoopEmbeddingHooks) OnNotice(string, string)                   {}

// NoopSeedHooks is a no-op implementation of SeedHooks.
type NoopSeedHooks struct{}

func (NoopSeedHooks) OnRoundComplete(int, int, float64)                 {}
func (NoopSeedHooks) OnSelectComplete([]int, int, time.Duration, error) {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string, int) {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, time.Duration, bool, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	embeddingHooks EmbeddingHooks = NoopEmbeddingHooks{}
	seedHooks      SeedHooks      = NoopSeedHooks{}
	pipelineHooks  PipelineHooks  = NoopPipelineHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	hooksMu        sync.RWMutex
)

// SetEmbeddingHooks registers custom layout engine hooks.
// This should be called once at application startup before any run.
func SetEmbeddingHooks(h EmbeddingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		embeddingHooks = h
	}
}

// SetSeedHooks registers custom seed selector hooks.
// This should be called once at application startup before any selection.
func SetSeedHooks(h SeedHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		seedHooks = h
	}
}

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Embedding returns the registered layout engine hooks.
func Embedding() EmbeddingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return embeddingHooks
}

// Seeds returns the registered seed selector hooks.
func Seeds() SeedHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return seedHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	embeddingHooks = NoopEmbeddingHooks{}
	seedHooks = NoopSeedHooks{}
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
