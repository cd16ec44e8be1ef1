package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8090"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSMaxAge         = 3600 // 1 hour
	DefaultCORSFrontendOrigin = "https://panel.teamcraft.io"

	// Upstream defaults
	DefaultUpstreamAPIPrefix       = "/v2"
	DefaultUpstreamTimeout         = 30 * time.Second
	DefaultUpstreamMaxIdleConns    = 100
	DefaultUpstreamIdlePerHost     = 10
	DefaultUpstreamIdleConnTimeout = 90 * time.Second

	// Retry defaults
	DefaultRetryMaxAttempts  = 3
	DefaultRetryInitialDelay = 500 * time.Millisecond

	// Throttle defaults
	DefaultThrottleMaxConcurrent = 5

	// Manifest defaults
	DefaultManifestPath = "manifest.yaml"

	// Platform defaults
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultDedupWindow      = 300 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "meridian"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingService     = "meridian"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultHealthCheckTimeout = 5 * time.Second

	// Audit defaults
	DefaultAuditBackend       = "sqlite"
	DefaultAuditSQLitePath    = "data/audit.db"
	DefaultAuditBuffer        = 1000
	DefaultAuditRetentionDays = 30
	DefaultAuditPruneSchedule = "0 3 * * *"

	// Limits defaults
	DefaultLimitsRequestsPerSecond = 50
	DefaultLimitsBurst             = 100
	DefaultLimitsMaxConcurrent     = 64
	DefaultLimitsUsageDBPath       = "data/usage.db"
)

// NewDefault returns a Config with every field at its default value.
// Useful for tests and the dry-run path.
func NewDefault() *Config {
	cfg := enabledBase()
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
//
// Boolean toggles that default to true (CORS, metrics, health, audit,
// limits, manifest serving, log redaction) are seeded before YAML
// decoding so an explicit `enabled: false` in the file survives; see
// LoadConfig.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// CORS defaults
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{DefaultCORSFrontendOrigin}
	}
	if len(cfg.Server.CORS.AllowedMethods) == 0 {
		cfg.Server.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.Server.CORS.AllowedHeaders) == 0 {
		cfg.Server.CORS.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if len(cfg.Server.CORS.ExposedHeaders) == 0 {
		cfg.Server.CORS.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Upstream defaults
	if cfg.Upstream.APIPrefix == "" {
		cfg.Upstream.APIPrefix = DefaultUpstreamAPIPrefix
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Upstream.MaxIdleConns == 0 {
		cfg.Upstream.MaxIdleConns = DefaultUpstreamMaxIdleConns
	}
	if cfg.Upstream.MaxIdleConnsPerHost == 0 {
		cfg.Upstream.MaxIdleConnsPerHost = DefaultUpstreamIdlePerHost
	}
	if cfg.Upstream.IdleConnTimeout == 0 {
		cfg.Upstream.IdleConnTimeout = DefaultUpstreamIdleConnTimeout
	}

	// Retry defaults
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = DefaultRetryMaxAttempts
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = DefaultRetryInitialDelay
	}

	// Throttle defaults
	if cfg.Throttle.MaxConcurrent == 0 {
		cfg.Throttle.MaxConcurrent = DefaultThrottleMaxConcurrent
	}

	// Manifest defaults
	if cfg.Manifest.Path == "" {
		cfg.Manifest.Path = DefaultManifestPath
	}

	// Platform defaults
	if cfg.Platform.HandshakeTimeout == 0 {
		cfg.Platform.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.Platform.DedupWindow == 0 {
		cfg.Platform.DedupWindow = DefaultDedupWindow
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.ExportTimeout == 0 {
		cfg.Telemetry.Tracing.ExportTimeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = DefaultAuditSQLitePath
	}
	if cfg.Audit.Buffer == 0 {
		cfg.Audit.Buffer = DefaultAuditBuffer
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = DefaultAuditRetentionDays
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = DefaultAuditPruneSchedule
	}

	// Limits defaults
	if cfg.Limits.RequestsPerSecond == 0 {
		cfg.Limits.RequestsPerSecond = DefaultLimitsRequestsPerSecond
	}
	if cfg.Limits.Burst == 0 {
		cfg.Limits.Burst = DefaultLimitsBurst
	}
	if cfg.Limits.MaxConcurrent == 0 {
		cfg.Limits.MaxConcurrent = DefaultLimitsMaxConcurrent
	}
	if cfg.Limits.UsageDBPath == "" {
		cfg.Limits.UsageDBPath = DefaultLimitsUsageDBPath
	}
}
