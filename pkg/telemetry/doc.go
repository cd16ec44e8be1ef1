// Package telemetry groups the observability subpackages for Meridian.
//
// Components:
//
//   - logging: structured slog logging with credential redaction
//   - metrics: Prometheus metrics for gateway, upstream, and events
//   - tracing: OpenTelemetry distributed tracing over OTLP gRPC
//   - health: liveness and readiness probes plus version info
//
// Each subpackage is wired independently from its section of
// config.TelemetryConfig; none of them depend on each other.
package telemetry
