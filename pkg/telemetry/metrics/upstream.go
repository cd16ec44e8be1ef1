package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"seamark-hq/meridian/pkg/config"
)

// UpstreamMetrics tracks calls to the regional vendor hosts.
//
// Metrics:
//   - meridian_upstream_calls_total: call attempts by region and outcome
//   - meridian_upstream_call_duration_seconds: per-attempt latency
//   - meridian_upstream_retries_total: retries by region and reason
//   - meridian_throttle_in_flight: current batch throttler occupancy
type UpstreamMetrics struct {
	callsTotal       *prometheus.CounterVec
	callDuration     *prometheus.HistogramVec
	retriesTotal     *prometheus.CounterVec
	throttleInFlight prometheus.Gauge
}

// NewUpstreamMetrics creates and registers upstream metrics with the
// provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "upstream_calls_total",
				Help:      "Total number of upstream call attempts",
			},
			[]string{"region", "outcome"},
		),

		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "upstream_call_duration_seconds",
				Help:      "Duration of individual upstream call attempts in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"region"},
		),

		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "upstream_retries_total",
				Help:      "Total number of upstream call retries",
			},
			[]string{"region", "reason"},
		),

		throttleInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "throttle_in_flight",
				Help:      "Upstream calls currently executing inside the batch throttler",
			},
		),
	}

	registry.MustRegister(
		um.callsTotal,
		um.callDuration,
		um.retriesTotal,
		um.throttleInFlight,
	)

	return um
}

// RecordCall records a single upstream call attempt.
func (um *UpstreamMetrics) RecordCall(region, outcome string, duration time.Duration) {
	um.callsTotal.WithLabelValues(region, outcome).Inc()
	um.callDuration.WithLabelValues(region).Observe(duration.Seconds())
}

// RecordRetry records a retried upstream call.
func (um *UpstreamMetrics) RecordRetry(region, reason string) {
	um.retriesTotal.WithLabelValues(region, reason).Inc()
}

// SetThrottleOccupancy updates the throttler in-flight gauge.
func (um *UpstreamMetrics) SetThrottleOccupancy(n int) {
	um.throttleInFlight.Set(float64(n))
}
