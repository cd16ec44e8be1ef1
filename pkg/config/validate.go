package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"

	"seamark-hq/meridian/pkg/region"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access
// to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. It returns nil if the
// configuration is valid. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateUpstream(&cfg.Upstream)...)
	errs = append(errs, validateRetry(&cfg.Retry)...)
	errs = append(errs, validateThrottle(&cfg.Throttle)...)
	errs = append(errs, validateManifest(&cfg.Manifest)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateLimits(&cfg.Limits)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates gateway server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("must be host:port: %v", err),
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	if cfg.CORS.Enabled && len(cfg.CORS.AllowedOrigins) == 0 {
		errs = append(errs, FieldError{
			Field:   "server.cors.allowed_origins",
			Message: "at least one allowed origin is required when CORS is enabled",
		})
	}
	for _, origin := range cfg.CORS.AllowedOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "server.cors.allowed_origins",
				Message: fmt.Sprintf("origin %q must be an absolute URL or *", origin),
			})
		}
	}

	return errs
}

// validateUpstream validates vendor client configuration.
func validateUpstream(cfg *UpstreamConfig) []FieldError {
	var errs []FieldError

	if !strings.HasPrefix(cfg.APIPrefix, "/") {
		errs = append(errs, FieldError{
			Field:   "upstream.api_prefix",
			Message: "must start with /",
		})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.timeout",
			Message: "timeout must be positive",
		})
	}

	for name, host := range cfg.Hosts {
		// Parse is total and falls back to US, so misspelled keys would
		// silently override the US host. Reject anything that is not a
		// recognized region name.
		if region.Parse(name) == region.US && !isUSAlias(name) {
			errs = append(errs, FieldError{
				Field:   "upstream.hosts",
				Message: fmt.Sprintf("unknown region %q", name),
			})
			continue
		}
		u, err := url.Parse(host)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "upstream.hosts",
				Message: fmt.Sprintf("host for region %q must be an absolute http(s) URL", name),
			})
		}
	}

	return errs
}

// isUSAlias reports whether name canonically spells the US region,
// rather than falling back to it.
func isUSAlias(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), "us")
}

// validateRetry validates the backoff policy.
func validateRetry(cfg *RetryConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxAttempts < 1 {
		errs = append(errs, FieldError{
			Field:   "retry.max_attempts",
			Message: "must be at least 1",
		})
	}
	if cfg.MaxAttempts > 10 {
		errs = append(errs, FieldError{
			Field:   "retry.max_attempts",
			Message: "must be at most 10",
		})
	}
	if cfg.InitialDelay < 0 {
		errs = append(errs, FieldError{
			Field:   "retry.initial_delay",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateThrottle validates batch execution settings.
func validateThrottle(cfg *ThrottleConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxConcurrent < 1 {
		errs = append(errs, FieldError{
			Field:   "throttle.max_concurrent",
			Message: "must be at least 1",
		})
	}

	return errs
}

// validateManifest validates manifest serving configuration.
func validateManifest(cfg *ManifestConfig) []FieldError {
	var errs []FieldError

	if cfg.Serve && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "manifest.path",
			Message: "path is required when manifest serving is enabled",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (expected debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (expected json or text)", cfg.Logging.Format),
		})
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("unknown sampler %q (expected always, never, or ratio)", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "must be between 0.0 and 1.0",
			})
		}
	}

	return errs
}

// validateAudit validates audit capture configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}

	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("unknown backend %q (expected sqlite or memory)", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.SQLitePath == "" {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite_path",
			Message: "path is required for the sqlite backend",
		})
	}
	if cfg.Buffer < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.buffer",
			Message: "must not be negative",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention_days",
			Message: "must not be negative",
		})
	}
	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

// validateLimits validates rate limiting configuration.
func validateLimits(cfg *LimitsConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}

	if cfg.RequestsPerSecond < 1 {
		errs = append(errs, FieldError{
			Field:   "limits.requests_per_second",
			Message: "must be at least 1",
		})
	}
	if cfg.Burst < 1 {
		errs = append(errs, FieldError{
			Field:   "limits.burst",
			Message: "must be at least 1",
		})
	}
	if cfg.MaxConcurrent < 0 {
		errs = append(errs, FieldError{
			Field:   "limits.max_concurrent",
			Message: "must not be negative",
		})
	}

	return errs
}
