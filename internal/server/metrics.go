package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	lockWait   prometheus.Histogram
	increments *prometheus.CounterVec
}

// NewMetrics registers the server collectors on reg. A nil reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vulndemo_http_requests_total",
				Help: "HTTP requests by handler and status code",
			},
			[]string{"handler", "code"},
		),

		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vulndemo_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler"},
		),

		// Time spent blocked on the counter mutex before entering the critical section
		lockWait: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vulndemo_counter_lock_wait_seconds",
				Help:    "Time spent waiting for the counter lock",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),

		increments: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vulndemo_counter_increments_total",
				Help: "Counter increments by result",
			},
			[]string{"result"}, // ok, replayed, error
		),
	}
}

func (m *Metrics) ObserveLockWait(d time.Duration) {
	m.lockWait.Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) instrument(name string, h http.Handler) http.Handler {
	labels := prometheus.Labels{"handler": name}
	return promhttp.InstrumentHandlerDuration(m.duration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), h))
}
