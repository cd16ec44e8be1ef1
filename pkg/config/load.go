package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Seed the boolean toggles that default to on, so an explicit
	// `enabled: false` in the file is distinguishable from absence.
	cfg := enabledBase()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// enabledBase returns a Config with the on-by-default toggles set.
func enabledBase() *Config {
	cfg := &Config{}
	cfg.Server.CORS.Enabled = true
	cfg.Manifest.Serve = true
	cfg.Manifest.Watch = true
	cfg.Telemetry.Logging.Redact = true
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Tracing.Insecure = true
	cfg.Telemetry.Health.Enabled = true
	cfg.Audit.Enabled = true
	cfg.Limits.Enabled = true
	return cfg
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention MERIDIAN_SECTION_FIELD (e.g.,
// MERIDIAN_SERVER_LISTEN_ADDRESS). Environment variables always take
// precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format
// MERIDIAN_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("MERIDIAN_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("MERIDIAN_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_SERVER_CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.Server.CORS.AllowedOrigins = splitAndTrim(val)
	}

	// Upstream overrides
	if val := os.Getenv("MERIDIAN_UPSTREAM_API_PREFIX"); val != "" {
		cfg.Upstream.APIPrefix = val
	}
	if val := os.Getenv("MERIDIAN_UPSTREAM_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstream.Timeout = d
		}
	}
	applyHostEnvOverride(cfg, "US")
	applyHostEnvOverride(cfg, "EUROPE")
	applyHostEnvOverride(cfg, "APAC")

	// Retry overrides
	if val := os.Getenv("MERIDIAN_RETRY_MAX_ATTEMPTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retry.MaxAttempts = i
		}
	}
	if val := os.Getenv("MERIDIAN_RETRY_INITIAL_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retry.InitialDelay = d
		}
	}

	// Throttle overrides
	if val := os.Getenv("MERIDIAN_THROTTLE_MAX_CONCURRENT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Throttle.MaxConcurrent = i
		}
	}

	// Manifest overrides
	if val := os.Getenv("MERIDIAN_MANIFEST_PATH"); val != "" {
		cfg.Manifest.Path = val
	}
	if val := os.Getenv("MERIDIAN_MANIFEST_SERVE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Manifest.Serve = b
		}
	}
	if val := os.Getenv("MERIDIAN_MANIFEST_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Manifest.Watch = b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("MERIDIAN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	// Audit overrides
	if val := os.Getenv("MERIDIAN_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("MERIDIAN_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("MERIDIAN_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLitePath = val
	}
	if val := os.Getenv("MERIDIAN_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.RetentionDays = i
		}
	}

	// Limits overrides
	if val := os.Getenv("MERIDIAN_LIMITS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Limits.Enabled = b
		}
	}
	if val := os.Getenv("MERIDIAN_LIMITS_REQUESTS_PER_SECOND"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.RequestsPerSecond = i
		}
	}
	if val := os.Getenv("MERIDIAN_LIMITS_BURST"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.Burst = i
		}
	}
	if val := os.Getenv("MERIDIAN_LIMITS_USAGE_DB_PATH"); val != "" {
		cfg.Limits.UsageDBPath = val
	}
}

// applyHostEnvOverride applies a per-region host override of the form
// MERIDIAN_UPSTREAM_HOSTS_<REGION>.
func applyHostEnvOverride(cfg *Config, regionName string) {
	val := os.Getenv("MERIDIAN_UPSTREAM_HOSTS_" + regionName)
	if val == "" {
		return
	}
	if cfg.Upstream.Hosts == nil {
		cfg.Upstream.Hosts = make(map[string]string)
	}
	cfg.Upstream.Hosts[regionName] = val
}

// splitAndTrim splits a comma-separated list and trims whitespace.
func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
