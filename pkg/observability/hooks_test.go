package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Embedding hooks
	e := NoopEmbeddingHooks{}
	e.OnEmbedStart(100, 250, 3, 40)
	e.OnIteration(1, 40, 0.5)
	e.OnEmbedComplete(40, time.Second, nil)
	e.OnNotice("knn_clamped", "knn_k 15 clamped to 9")

	// Seed hooks
	s := NoopSeedHooks{}
	s.OnRoundComplete(1, 7, 0.25)
	s.OnSelectComplete([]int{7}, 1, time.Second, nil)

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, "embed", 100)
	p.OnStageComplete(ctx, "embed", time.Second, false, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "embed")
	c.OnCacheMiss(ctx, "seeds")
	c.OnCacheSet(ctx, "embed", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Embedding().(NoopEmbeddingHooks); !ok {
		t.Error("Embedding() should return NoopEmbeddingHooks by default")
	}
	if _, ok := Seeds().(NoopSeedHooks); !ok {
		t.Error("Seeds() should return NoopSeedHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customEmbedding := &testEmbeddingHooks{}
	SetEmbeddingHooks(customEmbedding)
	if Embedding() != customEmbedding {
		t.Error("SetEmbeddingHooks should set custom hooks")
	}

	customSeeds := &testSeedHooks{}
	SetSeedHooks(customSeeds)
	if Seeds() != customSeeds {
		t.Error("SetSeedHooks should set custom hooks")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Embedding().(NoopEmbeddingHooks); !ok {
		t.Error("Reset() should restore NoopEmbeddingHooks")
	}
	if _, ok := Seeds().(NoopSeedHooks); !ok {
		t.Error("Reset() should restore NoopSeedHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testEmbeddingHooks{}
	SetEmbeddingHooks(custom)

	// Setting nil should be ignored
	SetEmbeddingHooks(nil)

	if Embedding() != custom {
		t.Error("SetEmbeddingHooks(nil) should be ignored")
	}

	Reset()
}

func TestMultiEmbedding(t *testing.T) {
	a, b := &testEmbeddingHooks{}, &testEmbeddingHooks{}
	m := MultiEmbedding{a, b}

	m.OnEmbedStart(10, 9, 2, 3)
	for i := 1; i <= 3; i++ {
		m.OnIteration(i, 3, 1)
	}
	m.OnNotice("spectral_fallback", "graph is disconnected")
	m.OnEmbedComplete(3, time.Millisecond, nil)

	for _, h := range []*testEmbeddingHooks{a, b} {
		if h.iterations != 3 || h.notices != 1 || !h.done {
			t.Errorf("hooks saw iterations=%d notices=%d done=%v", h.iterations, h.notices, h.done)
		}
	}
}

// Test implementations
type testEmbeddingHooks struct {
	NoopEmbeddingHooks
	iterations int
	notices    int
	done       bool
}

func (h *testEmbeddingHooks) OnIteration(int, int, float64)             { h.iterations++ }
func (h *testEmbeddingHooks) OnNotice(string, string)                   { h.notices++ }
func (h *testEmbeddingHooks) OnEmbedComplete(int, time.Duration, error) { h.done = true }

type testSeedHooks struct{ NoopSeedHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
