// Package metrics exposes Prometheus collectors for validation outcomes and
// HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple servers don't
// collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	validationsTotal   *prometheus.CounterVec
	validationDuration prometheus.Histogram
	httpDuration       *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		validationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swapguard_validations_total",
				Help: "Slippage validations by pair and result code",
			},
			[]string{"pair", "code"},
		),
		validationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "swapguard_validation_duration_seconds",
				Help:    "Time spent validating one fill proposal",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swapguard_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}

// ObserveValidation records one validation outcome.
func (m *Metrics) ObserveValidation(pair, code string, took time.Duration) {
	m.validationsTotal.WithLabelValues(pair, code).Inc()
	m.validationDuration.Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request latency labelled by the matched route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		m.httpDuration.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}
