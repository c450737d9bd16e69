// Package metrics exposes request counters and latency histograms for Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its own registry so several servers can live in one process (tests).
type Metrics struct {
	registry *prometheus.Registry

	RequestCount       *prometheus.CounterVec
	RequestLatency     *prometheus.HistogramVec
	RequestsInProgress prometheus.Gauge
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "request_count",
				Help: "App Request Count",
			},
			[]string{"method", "route", "status_code"},
		),
		RequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "request_latency_seconds",
				Help:    "Request latency",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
		RequestsInProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "requests_in_progress",
				Help: "Count of requests in progress",
			},
		),
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reco_cache_hits_total",
				Help: "Result cache hits",
			},
			[]string{"model", "kind"},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reco_cache_misses_total",
				Help: "Result cache misses",
			},
			[]string{"model", "kind"},
		),
	}
}

// Handler serves the exposition format for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records count, latency and in-flight requests per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsInProgress.Inc()
		defer m.RequestsInProgress.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.RequestLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.RequestCount.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
