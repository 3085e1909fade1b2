package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/okanda/rosviz/pkg/observability"
)

// Metrics holds the Prometheus collectors for the server. It implements the
// observability pipeline and cache hooks, so wiring it into the hook
// registry instruments every pipeline run without the pipeline knowing
// about Prometheus.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	LoadsTotal    *prometheus.CounterVec
	LoadDuration  *prometheus.HistogramVec
	GraphNodes    prometheus.Gauge
	LayoutsTotal  *prometheus.CounterVec
	LayoutSeconds prometheus.Histogram

	CacheOpsTotal *prometheus.CounterVec
}

// NewMetrics creates the server metric set on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosviz_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rosviz_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestsInFlight = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "rosviz_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	m.LoadsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosviz_graph_loads_total",
			Help: "Total number of graph imports by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	m.LoadDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rosviz_graph_load_duration_seconds",
			Help:    "Graph import latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	m.GraphNodes = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "rosviz_graph_nodes",
			Help: "Node count of the most recently imported graph",
		},
	)

	m.LayoutsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosviz_layouts_total",
			Help: "Total number of layout computations by outcome",
		},
		[]string{"outcome"},
	)

	m.LayoutSeconds = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rosviz_layout_duration_seconds",
			Help:    "Layout computation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.CacheOpsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosviz_cache_operations_total",
			Help: "Cache hits, misses and writes by stage",
		},
		[]string{"stage", "op"},
	)

	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ===== observability.PipelineHooks =====

func (m *Metrics) OnLoadStart(ctx context.Context, format, source string) {}

func (m *Metrics) OnLoadComplete(ctx context.Context, format, source string, nodeCount int, d time.Duration, err error) {
	m.LoadsTotal.WithLabelValues(format, outcome(err)).Inc()
	if err == nil {
		m.LoadDuration.WithLabelValues(format).Observe(d.Seconds())
		m.GraphNodes.Set(float64(nodeCount))
	}
}

func (m *Metrics) OnLayoutStart(ctx context.Context, groupCount, nodeCount int) {}

func (m *Metrics) OnLayoutComplete(ctx context.Context, d time.Duration, err error) {
	m.LayoutsTotal.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.LayoutSeconds.Observe(d.Seconds())
	}
}

func (m *Metrics) OnExportStart(ctx context.Context, format string) {}

func (m *Metrics) OnExportComplete(ctx context.Context, format string, d time.Duration, err error) {}

// ===== observability.CacheHooks =====

func (m *Metrics) OnCacheHit(ctx context.Context, stage string) {
	m.CacheOpsTotal.WithLabelValues(stage, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(ctx context.Context, stage string) {
	m.CacheOpsTotal.WithLabelValues(stage, "miss").Inc()
}

func (m *Metrics) OnCacheSet(ctx context.Context, stage string, sizeBytes int) {
	m.CacheOpsTotal.WithLabelValues(stage, "set").Inc()
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
