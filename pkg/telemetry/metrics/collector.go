package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"seamark-hq/meridian/pkg/config"
)

// Collector is the orchestrator for all Prometheus metrics in Meridian.
// It manages metric registration and provides a unified interface for
// recording metrics across the gateway, the upstream client, and the
// platform event dispatcher.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	upstreamMetrics *UpstreamMetrics
	eventMetrics    *EventMetrics
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "meridian"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)
	c.eventMetrics = NewEventMetrics(cfg, registry)

	return c
}

// RecordRequest records metrics for a completed gateway request.
//
// Parameters:
//   - route: gateway route pattern (e.g., "/v1/proxy")
//   - method: HTTP method
//   - status: HTTP status code returned to the client
//   - duration: total handling duration
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordRequest(route, method, status, duration)
}

// RecordUpstreamCall records a single upstream call attempt outcome.
//
// Parameters:
//   - region: resolved upstream region ("US", "EUROPE", "APAC")
//   - outcome: "success", or the error kind on failure
//     (e.g., "network_error", "rate_limited", "server_error")
//   - duration: call duration
func (c *Collector) RecordUpstreamCall(region, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.upstreamMetrics.RecordCall(region, outcome, duration)
}

// RecordRetry records that a failed upstream call was retried.
//
// Parameters:
//   - region: resolved upstream region
//   - reason: error kind that triggered the retry
func (c *Collector) RecordRetry(region, reason string) {
	if !c.config.Enabled {
		return
	}
	c.upstreamMetrics.RecordRetry(region, reason)
}

// SetThrottleOccupancy updates the number of upstream calls currently
// in flight inside the batch throttler.
func (c *Collector) SetThrottleOccupancy(n int) {
	if !c.config.Enabled {
		return
	}
	c.upstreamMetrics.SetThrottleOccupancy(n)
}

// RecordEvent records a dispatched host-platform event.
//
// Parameters:
//   - kind: event kind ("command", "token_refresh", ...)
//   - outcome: "handled", "deduplicated", or "error"
func (c *Collector) RecordEvent(kind, outcome string) {
	if !c.config.Enabled {
		return
	}
	c.eventMetrics.RecordEvent(kind, outcome)
}

// RecordRateLimitRejection records a request rejected by the gateway
// rate limiter.
func (c *Collector) RecordRateLimitRejection(route string) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordRateLimitRejection(route)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
