package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/matzehuels/graphem/pkg/observability"
)

// Install registers r as the process-wide embedding, seed, pipeline and
// cache hooks. Call it once at startup.
func (r *Registry) Install() {
	observability.SetEmbeddingHooks(r)
	observability.SetSeedHooks(r)
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (r *Registry) OnEmbedStart(n, m, dim, iterations int) {
	r.EmbedVertices.Set(float64(n))
	r.EmbedEdges.Set(float64(m))
}

func (r *Registry) OnIteration(iter, total int, maxStep float64) {
	r.EmbedIterationsTotal.Inc()
	r.EmbedMaxStep.Set(maxStep)
}

func (r *Registry) OnEmbedComplete(iterations int, d time.Duration, err error) {
	r.EmbedRunsTotal.WithLabelValues(status(err)).Inc()
	r.EmbedDuration.Observe(d.Seconds())
}

func (r *Registry) OnNotice(code, message string) {
	r.NoticesTotal.WithLabelValues(code).Inc()
}

func (r *Registry) OnRoundComplete(round, seed int, score float64) {
	r.SeedRoundsTotal.Inc()
	r.SeedLastScore.Set(score)
}

func (r *Registry) OnSelectComplete(seeds []int, rounds int, d time.Duration, err error) {
	r.SeedSelectionsTotal.WithLabelValues(status(err)).Inc()
	r.SeedSelectDuration.Observe(d.Seconds())
}

func (r *Registry) OnStageStart(ctx context.Context, stage string, n int) {}

func (r *Registry) OnStageComplete(ctx context.Context, stage string, d time.Duration, cached bool, err error) {
	r.StagesTotal.WithLabelValues(stage, status(err)).Inc()
	r.StageDuration.WithLabelValues(stage, strconv.FormatBool(cached)).Observe(d.Seconds())
}

func (r *Registry) OnCacheHit(ctx context.Context, kind string) {
	r.CacheRequestsTotal.WithLabelValues(kind, "hit").Inc()
}

func (r *Registry) OnCacheMiss(ctx context.Context, kind string) {
	r.CacheRequestsTotal.WithLabelValues(kind, "miss").Inc()
}

func (r *Registry) OnCacheSet(ctx context.Context, kind string, size int) {
	r.CacheWrittenBytes.Add(float64(size))
}

var (
	_ observability.EmbeddingHooks = (*Registry)(nil)
	_ observability.SeedHooks      = (*Registry)(nil)
	_ observability.PipelineHooks  = (*Registry)(nil)
	_ observability.CacheHooks     = (*Registry)(nil)
)
