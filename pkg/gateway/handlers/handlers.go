package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"seamark-hq/meridian/pkg/audit"
	"seamark-hq/meridian/pkg/gateway/middleware"
	"seamark-hq/meridian/pkg/limits/usage"
	"seamark-hq/meridian/pkg/manifest"
	"seamark-hq/meridian/pkg/platform"
	"seamark-hq/meridian/pkg/telemetry/metrics"
	"seamark-hq/meridian/pkg/telemetry/tracing"
	"seamark-hq/meridian/pkg/token"
	"seamark-hq/meridian/pkg/upstream"
)

// Deps bundles the services the gateway handlers operate on. Audit,
// Usage, Metrics, and Tracer are optional and may be nil.
type Deps struct {
	Client   *upstream.Client
	Carrier  *token.Carrier
	Retry    upstream.RetryConfig
	Throttle upstream.ThrottleConfig

	Dispatcher *platform.Dispatcher
	Manifest   *manifest.Service

	Audit   *audit.Recorder
	Usage   *usage.Store
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
}

// retryConfig returns the retry policy with retry observations wired
// into the metrics collector for the given region.
func (d *Deps) retryConfig(regionName string) upstream.RetryConfig {
	cfg := d.Retry
	if d.Metrics != nil {
		cfg.OnRetry = func(reason string) {
			d.Metrics.RecordRetry(regionName, reason)
		}
	}
	return cfg
}

// throttleConfig returns the throttle settings with window occupancy
// wired into the metrics gauge.
func (d *Deps) throttleConfig() upstream.ThrottleConfig {
	cfg := d.Throttle
	if d.Metrics != nil {
		cfg.OnOccupancy = d.Metrics.SetThrottleOccupancy
	}
	return cfg
}

// absorbBearer reads a bearer credential from the Authorization header
// into the Carrier. Calls without the header use whatever credential the
// Carrier currently holds.
func (d *Deps) absorbBearer(r *http.Request) {
	header := r.Header.Get("Authorization")
	if credential, ok := strings.CutPrefix(header, "Bearer "); ok && credential != "" {
		d.Carrier.Set(credential)
	}
}

// startSpan opens a span when tracing is configured.
func (d *Deps) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if d.Tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return d.Tracer.Start(ctx, name)
}

// recordOutcome feeds one completed proxied call into the audit trail,
// the usage counters, and the metrics collector.
func (d *Deps) recordOutcome(ctx context.Context, method, resourcePath, regionName string, result *upstream.Result, err error, started time.Time) {
	duration := time.Since(started)

	statusCode := 0
	outcome := "success"
	errorKind := ""
	attempts := 1

	if err != nil {
		errorKind = upstream.Kind(err)
		outcome = errorKind
		statusCode = upstream.StatusOf(err)

		var retryErr *upstream.RetryError
		if errors.As(err, &retryErr) {
			attempts = retryErr.Attempts
		}
	} else if result != nil {
		statusCode = result.StatusCode
		attempts = result.Attempts
	}

	if d.Metrics != nil {
		d.Metrics.RecordUpstreamCall(regionName, outcome, duration)
	}

	if d.Usage != nil {
		// Usage accounting is best effort and must not fail the call.
		_ = d.Usage.Record(ctx, regionName, err != nil)
	}

	if d.Audit != nil {
		_ = d.Audit.Record(ctx, &audit.Record{
			RequestID:    middleware.GetRequestID(ctx),
			Method:       method,
			ResourcePath: resourcePath,
			Region:       regionName,
			StatusCode:   statusCode,
			Outcome:      outcome,
			ErrorKind:    errorKind,
			Attempts:     attempts,
			Duration:     duration,
		})
	}
}
