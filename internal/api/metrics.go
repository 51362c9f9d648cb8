package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/docforge/internal/pipeline"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	conversions *prometheus.HistogramVec
	imports     *prometheus.CounterVec
	queueDepth  prometheus.GaugeFunc
}

// NewMetrics registers the collectors. queueDepth may be nil.
func NewMetrics(queueDepth func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docforge",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docforge",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		conversions: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docforge",
			Name:      "conversion_duration_seconds",
			Help:      "Time spent converting documents, by conversion.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"conversion"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docforge",
			Name:      "imports_total",
			Help:      "Finished imports by format and outcome.",
		}, []string{"format", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.conversions, m.imports,
	)
	if queueDepth != nil {
		m.queueDepth = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "docforge",
			Name:      "import_queue_depth",
			Help:      "Asynchronous imports waiting for a worker.",
		}, func() float64 { return float64(queueDepth()) })
		m.registry.MustRegister(m.queueDepth)
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by their chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveConversion records how long one conversion took.
func (m *Metrics) ObserveConversion(conversion string, start time.Time) {
	m.conversions.WithLabelValues(conversion).Observe(time.Since(start).Seconds())
}

// ObserveImport counts a finished import job.
func (m *Metrics) ObserveImport(job pipeline.JobSnapshot, elapsed time.Duration) {
	format := "unknown"
	if job.Result != nil && job.Result.Import != nil {
		format = job.Result.Import.Format
	}
	m.imports.WithLabelValues(format, string(job.Status)).Inc()
	m.conversions.WithLabelValues("import_async").Observe(elapsed.Seconds())
}
