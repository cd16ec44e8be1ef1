// Package config provides configuration management for Meridian.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention MERIDIAN_SECTION_FIELD.
// For example:
//
//   - MERIDIAN_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - MERIDIAN_UPSTREAM_HOSTS_EUROPE overrides upstream.hosts.EUROPE
//   - MERIDIAN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation
// includes required field checks (e.g., a manifest path when serving is
// enabled), range validation (e.g., retry attempts between 1 and 10), and
// format validation (e.g., regional host overrides must be absolute http(s)
// URLs). Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - upstream.hosts: host for region "EUROPE" must be an absolute http(s) URL
//	  - retry.max_attempts: must be at least 1
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8090"
//	  cors:
//	    allowed_origins: ["https://panel.teamcraft.io"]
//
//	upstream:
//	  hosts:
//	    EUROPE: "https://api-eu.teamcraft.io"
//
//	retry:
//	  max_attempts: 3
//	  initial_delay: 500ms
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses
// read-write locks to allow concurrent reads while protecting against
// concurrent writes during reload operations.
package config
