package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lorrc/user-directory/internal/core/ports"
)

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	FetchesTotal        *prometheus.CounterVec
	FetchedUsers        prometheus.Histogram
}

var _ ports.FetchObserver = (*Metrics)(nil)

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "directory_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_user_fetches_total",
				Help: "Total number of user source fetches by outcome",
			},
			[]string{"outcome"},
		),
		FetchedUsers: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "directory_fetched_users",
				Help:    "Number of users returned per successful fetch",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 500, 1000, 5000},
			},
		),
	}
}

// ObserveFetch records the outcome of one user source fetch
func (m *Metrics) ObserveFetch(outcome string, count int) {
	m.FetchesTotal.WithLabelValues(outcome).Inc()
	if count > 0 {
		m.FetchedUsers.Observe(float64(count))
	}
}
