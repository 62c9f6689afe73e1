package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors exported by the service.
type Metrics struct {
	ResolverCalls    *prometheus.CounterVec
	ResolverSeconds  *prometheus.HistogramVec
	Fallbacks        prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	AddressProcessed *prometheus.CounterVec
	ActiveWorkers    prometheus.Gauge
}

// NewMetrics registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ResolverCalls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "compass_resolver_calls_total",
			Help: "Total number of resolver invocations by outcome.",
		}, []string{"resolver", "outcome"}),
		ResolverSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "compass_resolver_request_duration_seconds",
			Help:    "Duration of resolver invocations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"resolver"}),
		Fallbacks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "compass_dispatch_fallbacks_total",
			Help: "Total number of dispatches that consulted a backup resolver.",
		}),
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "compass_http_requests_total",
			Help: "Total number of geocode API requests by response status.",
		}, []string{"status"}),
		AddressProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "compass_backfill_addresses_processed_total",
			Help: "Total number of stored addresses processed by the backfill worker.",
		}, []string{"status"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "compass_backfill_active_workers",
			Help: "Current number of backfill workers processing an address.",
		}),
	}
}
