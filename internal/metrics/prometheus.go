// Package metrics defines the Prometheus instrumentation for the bridge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the PhotosBridge server.
type Metrics struct {
	// Connection metrics
	ConnectionsAccepted prometheus.Counter
	ActiveConnections   prometheus.Gauge
	ParseErrors         prometheus.Counter

	// Response metrics
	Responses    *prometheus.CounterVec
	ResponseSize prometheus.Histogram

	// Asset fetch metrics
	FetchDuration prometheus.Histogram
	FetchErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics against reg. Tests pass a
// fresh registry so repeated construction does not collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "photosbridge_connections_accepted_total",
			Help: "Total number of TCP connections accepted",
		}),
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "photosbridge_active_connections",
			Help: "Current number of connections in the registry",
		}),
		ParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "photosbridge_parse_errors_total",
			Help: "Total number of connections dropped for unparseable requests",
		}),
		Responses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "photosbridge_responses_total",
			Help: "Total number of HTTP responses written, by status code",
		}, []string{"status"}),
		ResponseSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "photosbridge_response_size_bytes",
			Help:    "Size of response bodies in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 4, 10), // 64B to ~16MB
		}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "photosbridge_fetch_duration_seconds",
			Help:    "Time spent resolving assets from the store",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "photosbridge_fetch_errors_total",
			Help: "Total number of failed asset fetches, by reason",
		}, []string{"reason"}),
	}
}
