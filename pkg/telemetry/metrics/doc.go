// Package metrics provides Prometheus metrics collection for Meridian.
//
// The package covers three areas: gateway request handling (count,
// duration, rate limit rejections), upstream vendor calls (attempts by
// region and outcome, retries, batch throttler occupancy), and host
// platform events (received events by kind and outcome).
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordRequest("/v1/proxy", "POST", 200, 120*time.Millisecond)
//	collector.RecordUpstreamCall("EUROPE", "success", 80*time.Millisecond)
//	collector.RecordRetry("EUROPE", "rate_limited")
//	collector.RecordEvent("command", "handled")
//
//	http.Handle("/metrics", collector.Handler())
//
// All Record methods are no-ops when metrics are disabled in the
// configuration, so call sites need no guards.
package metrics
