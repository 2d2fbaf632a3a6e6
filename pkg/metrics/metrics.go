// Package metrics records embedding, seed selection, pipeline and cache
// events as Prometheus metrics.
//
// A [Registry] owns its own prometheus.Registry and implements every hook
// interface of the observability package, so installing it is one call:
//
//	reg := metrics.NewRegistry()
//	reg.Install()
//	defer reg.WriteTextfile("graphem.prom")
//
// The CLI has no HTTP surface; metrics are written in the node_exporter
// textfile format at exit.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for the application.
type Registry struct {
	// Embedding Metrics
	EmbedRunsTotal       *prometheus.CounterVec
	EmbedDuration        prometheus.Histogram
	EmbedIterationsTotal prometheus.Counter
	EmbedVertices        prometheus.Gauge
	EmbedEdges           prometheus.Gauge
	EmbedMaxStep         prometheus.Gauge
	NoticesTotal         *prometheus.CounterVec

	// Seed Selection Metrics
	SeedRoundsTotal     prometheus.Counter
	SeedSelectionsTotal *prometheus.CounterVec
	SeedSelectDuration  prometheus.Histogram
	SeedLastScore       prometheus.Gauge

	// Pipeline Metrics
	StagesTotal   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheRequestsTotal *prometheus.CounterVec
	CacheWrittenBytes  prometheus.Counter

	registry *prometheus.Registry
}

var durationBuckets = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initEmbedMetrics()
	r.initSeedMetrics()
	r.initPipelineMetrics()
	r.initCacheMetrics()
	return r
}

// Gatherer returns the underlying Prometheus registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes every metric to path in the text exposition
// format, replacing the file atomically.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

func (r *Registry) initEmbedMetrics() {
	f := promauto.With(r.registry)
	r.EmbedRunsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphem_embed_runs_total",
			Help: "Total number of layout engine runs",
		},
		[]string{"status"},
	)
	r.EmbedDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphem_embed_duration_seconds",
		Help:    "Layout engine run duration in seconds",
		Buckets: durationBuckets,
	})
	r.EmbedIterationsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "graphem_embed_iterations_total",
		Help: "Total number of layout iterations executed",
	})
	r.EmbedVertices = f.NewGauge(prometheus.GaugeOpts{
		Name: "graphem_embed_vertices",
		Help: "Vertex count of the most recent run",
	})
	r.EmbedEdges = f.NewGauge(prometheus.GaugeOpts{
		Name: "graphem_embed_edges",
		Help: "Edge count of the most recent run",
	})
	r.EmbedMaxStep = f.NewGauge(prometheus.GaugeOpts{
		Name: "graphem_embed_max_step",
		Help: "Largest vertex displacement in the most recent iteration",
	})
	r.NoticesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphem_notices_total",
			Help: "Degenerate-input notices by code",
		},
		[]string{"code"},
	)
}

func (r *Registry) initSeedMetrics() {
	f := promauto.With(r.registry)
	r.SeedRoundsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "graphem_seed_rounds_total",
		Help: "Total number of seed selection rounds",
	})
	r.SeedSelectionsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphem_seed_selections_total",
			Help: "Total number of seed selections",
		},
		[]string{"status"},
	)
	r.SeedSelectDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphem_seed_select_duration_seconds",
		Help:    "Seed selection duration in seconds",
		Buckets: durationBuckets,
	})
	r.SeedLastScore = f.NewGauge(prometheus.GaugeOpts{
		Name: "graphem_seed_last_score",
		Help: "Ranker score of the most recently committed seed",
	})
}

func (r *Registry) initPipelineMetrics() {
	f := promauto.With(r.registry)
	r.StagesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphem_pipeline_stages_total",
			Help: "Pipeline stage executions by outcome",
		},
		[]string{"stage", "status"},
	)
	r.StageDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphem_pipeline_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: durationBuckets,
		},
		[]string{"stage", "cached"},
	)
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)
	r.CacheRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphem_cache_requests_total",
			Help: "Cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)
	r.CacheWrittenBytes = f.NewCounter(prometheus.CounterOpts{
		Name: "graphem_cache_written_bytes_total",
		Help: "Bytes written to the cache",
	})
}
