// Package telemetry exposes Prometheus metrics for the API.
package telemetry

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

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

const namespace = "fuelctl"

// Metrics holds the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	budgetUsage     *prometheus.GaugeVec
	alertsRecorded  *prometheus.CounterVec
	entriesImported prometheus.Counter
}

// NewMetrics registers the collectors on a fresh registry, along with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		budgetUsage: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "budget_usage_percent",
				Help:      "Primary vendor spend as a percentage of the period limit",
			},
			[]string{"period"},
		),

		alertsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "budget_alerts_total",
				Help:      "Budget alerts recorded as shown, by band",
			},
			[]string{"band"},
		),

		entriesImported: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_imported_total",
				Help:      "Fuel entries stored through CSV imports",
			},
		),
	}
}

// ObserveBudget sets the usage gauge of a period.
func (m *Metrics) ObserveBudget(label period.Label, percentUsed float64) {
	m.budgetUsage.WithLabelValues(string(label)).Set(percentUsed)
}

// AlertRecorded counts a band that was surfaced.
func (m *Metrics) AlertRecorded(key alert.Key) {
	m.alertsRecorded.WithLabelValues(string(key.Band)).Inc()
}

func (m *Metrics) EntriesImported(n int) {
	m.entriesImported.Add(float64(n))
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
