package config

import (
	"time"

	"seamark-hq/meridian/pkg/region"
)

// Config is the root configuration structure for Meridian.
// It contains all configuration sections for the gateway server, the
// upstream vendor client, retry and throttle policy, the extension
// manifest, telemetry, audit capture, and rate limits.
type Config struct {
	// Server contains HTTP gateway server configuration including listen
	// address, timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Upstream contains configuration for the vendor API client:
	// API prefix, per-region host overrides, and client timeouts.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Retry contains the backoff policy for transient upstream failures.
	Retry RetryConfig `yaml:"retry"`

	// Throttle contains the windowed batch execution settings.
	Throttle ThrottleConfig `yaml:"throttle"`

	// Manifest contains the extension manifest serving configuration.
	Manifest ManifestConfig `yaml:"manifest"`

	// Platform contains host-platform session settings: handshake
	// timeout and duplicate-command suppression.
	Platform PlatformConfig `yaml:"platform"`

	// Telemetry contains configuration for observability including
	// logging, metrics, tracing, and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit contains configuration for audit record capture and storage.
	Audit AuditConfig `yaml:"audit"`

	// Limits contains rate limiting and usage accounting configuration.
	Limits LimitsConfig `yaml:"limits"`
}

// ServerConfig contains configuration for the gateway HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the gateway to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8090", "0.0.0.0:8090").
	// Default: "127.0.0.1:8090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration for the
	// /v1/* routes. The manifest route is always permissive regardless
	// of these settings.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration for the restricted API routes.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is the list of frontend origins allowed to call the
	// /v1/* routes. An entry of "*" allows all origins (not recommended).
	// Default: ["https://panel.teamcraft.io"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight caching.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed in CORS
	// requests.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// UpstreamConfig contains configuration for the vendor API client.
type UpstreamConfig struct {
	// APIPrefix is the versioned path prefix of the vendor REST surface.
	// Default: "/v2"
	APIPrefix string `yaml:"api_prefix"`

	// Timeout bounds each individual upstream HTTP call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// Hosts overrides the built-in region-to-host table, keyed by
	// canonical region name (US, EUROPE, APAC). Regions not listed
	// resolve through the default table.
	Hosts map[string]string `yaml:"hosts"`

	// MaxIdleConns is the maximum number of idle pooled connections.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the per-host idle connection limit.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long idle pooled connections are kept.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// RetryConfig contains the backoff policy for transient failures.
type RetryConfig struct {
	// MaxAttempts is the total number of upstream calls allowed per
	// request, including the first.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// InitialDelay is the wait before the second attempt. Each further
	// wait doubles.
	// Default: 500ms
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// ThrottleConfig contains windowed batch execution settings.
type ThrottleConfig struct {
	// MaxConcurrent is the window size for batched upstream calls: how
	// many run in parallel before the batch waits for the window to
	// drain.
	// Default: 5
	MaxConcurrent int `yaml:"max_concurrent"`
}

// ManifestConfig contains extension manifest serving configuration.
type ManifestConfig struct {
	// Path is the manifest file path (YAML or JSON).
	// Default: "manifest.yaml"
	Path string `yaml:"path"`

	// Serve controls whether the gateway serves /manifest.json.
	// Default: true
	Serve bool `yaml:"serve"`

	// Watch enables hot reload when the manifest file changes. An
	// invalid replacement is rejected and the last good manifest stays
	// served.
	// Default: true
	Watch bool `yaml:"watch"`
}

// PlatformConfig contains host-platform session settings.
type PlatformConfig struct {
	// HandshakeTimeout bounds the platform connect handshake.
	// Default: 10s
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`

	// DedupWindow suppresses identical command invocations arriving
	// within this duration of the last dispatched one. Negative
	// disables deduplication.
	// Default: 300ms
	DedupWindow time.Duration `yaml:"dedup_window"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redact enables scrubbing of bearer tokens and other secret shapes
	// from log output. Disabling this is only sensible in tests.
	// Default: true
	Redact bool `yaml:"redact"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "meridian"
	Namespace string `yaml:"namespace"`

	// RequestDurationBuckets defines histogram buckets for request
	// duration in seconds.
	// Default: [0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is the service name reported in traces.
	// Default: "meridian"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// ExportTimeout bounds each OTLP export.
	// Default: 10s
	ExportTimeout time.Duration `yaml:"export_timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// CheckTimeout is the timeout for individual component checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// AuditConfig contains audit capture configuration. Audit records carry
// call metadata only, never credentials or request bodies.
type AuditConfig struct {
	// Enabled controls whether audit capture is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend specifies the audit store.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/audit.db"
	SQLitePath string `yaml:"sqlite_path"`

	// Buffer is the size of the async write channel buffer.
	// Default: 1000
	Buffer int `yaml:"buffer"`

	// RetentionDays is how many days of records to keep. 0 disables
	// pruning.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// LimitsConfig contains gateway rate limiting configuration.
type LimitsConfig struct {
	// Enabled controls whether rate limiting is enforced.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond is the sustained request rate allowed per
	// client, enforced with a token bucket.
	// Default: 50
	RequestsPerSecond int `yaml:"requests_per_second"`

	// Burst is the token bucket capacity: the number of requests that
	// may arrive at once before throttling kicks in.
	// Default: 100
	Burst int `yaml:"burst"`

	// MaxConcurrent is the ceiling on simultaneous in-flight gateway
	// requests. 0 means no ceiling.
	// Default: 64
	MaxConcurrent int `yaml:"max_concurrent"`

	// UsageDBPath is the path to the usage counter database. Empty
	// disables persisted usage accounting.
	// Default: "data/usage.db"
	UsageDBPath string `yaml:"usage_db_path"`
}

// RegionHosts converts the Upstream.Hosts override map to canonical
// region keys for the upstream client.
func (c *UpstreamConfig) RegionHosts() map[region.Region]string {
	if len(c.Hosts) == 0 {
		return nil
	}
	hosts := make(map[region.Region]string, len(c.Hosts))
	for name, host := range c.Hosts {
		hosts[region.Parse(name)] = host
	}
	return hosts
}
