package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"seamark-hq/meridian/pkg/region"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: "60s"

upstream:
  api_prefix: "/v2"
  hosts:
    EUROPE: "https://api-eu.example.test"

retry:
  max_attempts: 5
  initial_delay: "250ms"

throttle:
  max_concurrent: 8

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("listen address: got %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("read timeout: got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("max attempts: got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.InitialDelay != 250*time.Millisecond {
		t.Errorf("initial delay: got %v", cfg.Retry.InitialDelay)
	}
	if cfg.Throttle.MaxConcurrent != 8 {
		t.Errorf("max concurrent: got %d", cfg.Throttle.MaxConcurrent)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("logging level: got %q", cfg.Telemetry.Logging.Level)
	}

	// Unspecified fields pick up defaults.
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("write timeout default: got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Upstream.Timeout != DefaultUpstreamTimeout {
		t.Errorf("upstream timeout default: got %v", cfg.Upstream.Timeout)
	}

	hosts := cfg.Upstream.RegionHosts()
	if hosts[region.Europe] != "https://api-eu.example.test" {
		t.Errorf("europe host override: got %q", hosts[region.Europe])
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a mapping")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadConfig_InvalidConfig(t *testing.T) {
	path := writeConfigFile(t, `
retry:
  max_attempts: 99
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadConfig_ExplicitFalseSurvives(t *testing.T) {
	path := writeConfigFile(t, `
audit:
  enabled: false

limits:
  enabled: false

telemetry:
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Audit.Enabled {
		t.Error("audit.enabled: false should survive loading")
	}
	if cfg.Limits.Enabled {
		t.Error("limits.enabled: false should survive loading")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("telemetry.metrics.enabled: false should survive loading")
	}
	// Toggles the file does not mention stay on.
	if !cfg.Server.CORS.Enabled {
		t.Error("cors should default to enabled")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: "127.0.0.1:8090"
`)

	t.Setenv("MERIDIAN_SERVER_LISTEN_ADDRESS", "0.0.0.0:7070")
	t.Setenv("MERIDIAN_RETRY_MAX_ATTEMPTS", "4")
	t.Setenv("MERIDIAN_UPSTREAM_HOSTS_APAC", "https://apac.internal.test")
	t.Setenv("MERIDIAN_SERVER_CORS_ALLOWED_ORIGINS", "https://a.example.test, https://b.example.test")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:7070" {
		t.Errorf("env override lost: %q", cfg.Server.ListenAddress)
	}
	if cfg.Retry.MaxAttempts != 4 {
		t.Errorf("retry env override lost: %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Upstream.Hosts["APAC"] != "https://apac.internal.test" {
		t.Errorf("host env override lost: %q", cfg.Upstream.Hosts["APAC"])
	}
	want := []string{"https://a.example.test", "https://b.example.test"}
	if len(cfg.Server.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("origins: got %v", cfg.Server.CORS.AllowedOrigins)
	}
	for i, o := range want {
		if cfg.Server.CORS.AllowedOrigins[i] != o {
			t.Errorf("origin[%d]: got %q, want %q", i, cfg.Server.CORS.AllowedOrigins[i], o)
		}
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	path := writeConfigFile(t, "")

	t.Setenv("MERIDIAN_UPSTREAM_HOSTS_EUROPE", "not-a-url")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected validation error for invalid host override")
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a, b ,, c ")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
