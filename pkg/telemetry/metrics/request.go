package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"seamark-hq/meridian/pkg/config"
)

// RequestMetrics tracks gateway request handling.
//
// Metrics:
//   - meridian_requests_total: request count by route, method, status
//   - meridian_request_duration_seconds: handling duration histogram
//   - meridian_ratelimit_rejections_total: requests rejected by the limiter
type RequestMetrics struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	rateLimitRejections *prometheus.CounterVec
}

// NewRequestMetrics creates and registers request metrics with the
// provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of gateway requests processed",
			},
			[]string{"route", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of gateway request handling in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"route", "method"},
		),

		rateLimitRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "ratelimit_rejections_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.rateLimitRejections,
	)

	return rm
}

// RecordRequest records metrics for a completed gateway request.
func (rm *RequestMetrics) RecordRequest(route, method string, status int, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	rm.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordRateLimitRejection records a request turned away by the limiter.
func (rm *RequestMetrics) RecordRateLimitRejection(route string) {
	rm.rateLimitRejections.WithLabelValues(route).Inc()
}
