// Package metrics exposes Prometheus instrumentation for the HTTP server and
// the ingestion pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for ingested documents.
const (
	OutcomeSuccess   = "success"
	OutcomeMalformed = "malformed"
	OutcomeStorage   = "storage_failure"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// Registry owns every collector of the process.
type Registry struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentsTotal  *prometheus.CounterVec
	pagesTotal      *prometheus.CounterVec
	ingestDuration  prometheus.Histogram
	pagesPerDoc     prometheus.Histogram
	reclassified    prometheus.Counter
	overridesTotal  prometheus.Counter
	classifierRules prometheus.Gauge
}

// New creates a Registry with all collectors registered.
func New() *Registry {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "litrecord",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "litrecord",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "litrecord",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
		},
	)
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "litrecord",
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Documents submitted for ingestion by outcome.",
		},
		[]string{"outcome"},
	)
	pagesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "litrecord",
			Subsystem: "ingest",
			Name:      "pages_total",
			Help:      "Pages appended to the ledger by assigned category.",
		},
		[]string{"category"},
	)
	ingestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "litrecord",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "End-to-end ingestion time per document.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	pagesPerDoc := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "litrecord",
			Subsystem: "ingest",
			Name:      "document_pages",
			Help:      "Distribution of page counts per ingested document.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
	reclassified := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "litrecord",
			Subsystem: "ledger",
			Name:      "reclassified_pages_total",
			Help:      "Pages whose category changed during a case reclassification.",
		},
	)
	overridesTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "litrecord",
			Subsystem: "ledger",
			Name:      "manual_overrides_total",
			Help:      "Manual category assignments.",
		},
	)
	classifierRules := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "litrecord",
			Subsystem: "classifier",
			Name:      "rules",
			Help:      "Number of rules in the active classification table.",
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentsTotal,
		pagesTotal,
		ingestDuration,
		pagesPerDoc,
		reclassified,
		overridesTotal,
		classifierRules,
	)

	return &Registry{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		documentsTotal:  documentsTotal,
		pagesTotal:      pagesTotal,
		ingestDuration:  ingestDuration,
		pagesPerDoc:     pagesPerDoc,
		reclassified:    reclassified,
		overridesTotal:  overridesTotal,
		classifierRules: classifierRules,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Middleware records request counts and latency per matched route.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		r.requestInFlight.Inc()
		defer r.requestInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.requestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordIngest records one document ingestion attempt.
func (r *Registry) RecordIngest(outcome string, pages int, duration time.Duration) {
	if r == nil {
		return
	}
	r.documentsTotal.WithLabelValues(outcome).Inc()
	r.ingestDuration.Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		r.pagesPerDoc.Observe(float64(pages))
	}
}

// RecordPage counts one appended page under its category.
func (r *Registry) RecordPage(category string) {
	if r == nil {
		return
	}
	r.pagesTotal.WithLabelValues(category).Inc()
}

// RecordReclassified adds n pages changed by a reclassification.
func (r *Registry) RecordReclassified(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.reclassified.Add(float64(n))
}

// RecordOverride counts one manual category assignment.
func (r *Registry) RecordOverride() {
	if r == nil {
		return
	}
	r.overridesTotal.Inc()
}

// SetClassifierRules publishes the size of the active rule table.
func (r *Registry) SetClassifierRules(n int) {
	if r == nil {
		return
	}
	r.classifierRules.Set(float64(n))
}
