package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sink aggregates process metrics. It is constructed once in main and
// passed by reference into every component that records something; there
// is no package-level registry or global state. A nil *Sink is valid and
// records nothing, which keeps test wiring small.
type Sink struct {
	registry *prometheus.Registry

	recallStages  *prometheus.HistogramVec
	pathFailures  *prometheus.CounterVec
	recallTimeout prometheus.Counter
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	conflicts     prometheus.Counter
	tasksDropped  prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewSink() *Sink {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Sink{
		registry: reg,
		recallStages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mnemo_recall_stage_seconds",
			Help:    "Latency of each recall pipeline stage.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"stage"}),
		pathFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mnemo_recall_path_failures_total",
			Help: "Retrieval path failures isolated by the recall engine.",
		}, []string{"path"}),
		recallTimeout: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mnemo_recall_timeouts_total",
			Help: "Recalls abandoned at the global deadline.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mnemo_query_cache_hits_total",
			Help: "Recall query cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mnemo_query_cache_misses_total",
			Help: "Recall query cache misses.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mnemo_conflicts_created_total",
			Help: "CONFLICTS_WITH edges created by contradiction detection.",
		}),
		tasksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mnemo_enrichment_tasks_dropped_total",
			Help: "Background enrichment tasks dropped because the queue was full.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mnemo_http_requests_total",
			Help: "HTTP requests by method, route and status class.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mnemo_http_request_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(s.recallStages, s.pathFailures, s.recallTimeout,
		s.cacheHits, s.cacheMisses, s.conflicts, s.tasksDropped,
		s.httpRequests, s.httpDuration)
	return s
}

// Handler serves the registry in the Prometheus exposition format.
func (s *Sink) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func (s *Sink) ObserveStage(stage string, d time.Duration) {
	if s == nil {
		return
	}
	s.recallStages.WithLabelValues(stage).Observe(d.Seconds())
}

func (s *Sink) PathFailure(path string) {
	if s == nil {
		return
	}
	s.pathFailures.WithLabelValues(path).Inc()
}

func (s *Sink) RecallTimeout() {
	if s == nil {
		return
	}
	s.recallTimeout.Inc()
}

func (s *Sink) CacheHit() {
	if s == nil {
		return
	}
	s.cacheHits.Inc()
}

func (s *Sink) CacheMiss() {
	if s == nil {
		return
	}
	s.cacheMisses.Inc()
}

func (s *Sink) ConflictCreated() {
	if s == nil {
		return
	}
	s.conflicts.Inc()
}

func (s *Sink) TaskDropped() {
	if s == nil {
		return
	}
	s.tasksDropped.Inc()
}

func (s *Sink) HTTPRequest(method, route, status string, d time.Duration) {
	if s == nil {
		return
	}
	s.httpRequests.WithLabelValues(method, route, status).Inc()
	s.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
