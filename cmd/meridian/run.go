package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"seamark-hq/meridian/pkg/audit"
	"seamark-hq/meridian/pkg/audit/retention"
	"seamark-hq/meridian/pkg/audit/storage"
	"seamark-hq/meridian/pkg/cli"
	"seamark-hq/meridian/pkg/config"
	"seamark-hq/meridian/pkg/gateway"
	"seamark-hq/meridian/pkg/gateway/handlers"
	"seamark-hq/meridian/pkg/limits"
	"seamark-hq/meridian/pkg/limits/usage"
	"seamark-hq/meridian/pkg/manifest"
	"seamark-hq/meridian/pkg/platform"
	"seamark-hq/meridian/pkg/telemetry/health"
	"seamark-hq/meridian/pkg/telemetry/logging"
	"seamark-hq/meridian/pkg/telemetry/metrics"
	"seamark-hq/meridian/pkg/telemetry/tracing"
	"seamark-hq/meridian/pkg/token"
	"seamark-hq/meridian/pkg/upstream"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Meridian gateway server",
	Long: `Start the Meridian gateway server with the specified configuration.

The gateway listens on the configured address and forwards extension
requests to the region-resolved vendor host, applying retry, throttle,
and rate limit policy along the way.

Examples:
  # Start with default config
  meridian run

  # Start with custom config
  meridian run --config /etc/meridian/config.yaml

  # Override listen address
  meridian run --listen 0.0.0.0:8090

  # Validate config without starting the server
  meridian run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Redact:    cfg.Telemetry.Logging.Redact,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	if runFlags.dryRun {
		if err := config.Validate(cfg); err != nil {
			return cli.NewConfigError("", err.Error())
		}
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	// Tracing
	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer tracer.Shutdown(context.Background())
	if tracer.Enabled() {
		fmt.Printf("✓ Tracing enabled (endpoint %s)\n", cfg.Telemetry.Tracing.Endpoint)
	}

	// Health checker
	var checker *health.Checker
	if cfg.Telemetry.Health.Enabled {
		checker = health.New(cfg.Telemetry.Health.CheckTimeout)
		checker.RegisterCheck("config", func(ctx context.Context) error {
			return config.Validate(cfg)
		})
	}

	// Audit capture
	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		slog.Info("initializing audit capture", "backend", cfg.Audit.Backend)

		var store audit.Store
		switch cfg.Audit.Backend {
		case "sqlite":
			sqliteConfig := storage.DefaultSQLiteConfig()
			sqliteConfig.Path = cfg.Audit.SQLitePath
			store, err = storage.NewSQLiteStore(sqliteConfig)
			if err != nil {
				return cli.NewCommandError("run", fmt.Errorf("opening audit store: %w", err))
			}
		case "memory":
			store = storage.NewMemoryStore()
		default:
			return cli.NewConfigError("audit.backend", fmt.Sprintf("unsupported backend %q", cfg.Audit.Backend))
		}
		defer store.Close()

		recorder = audit.NewRecorder(store, &audit.RecorderConfig{
			Enabled: true,
			Buffer:  cfg.Audit.Buffer,
		})
		defer recorder.Close()

		if checker != nil {
			checker.RegisterCheck("audit", func(ctx context.Context) error {
				_, err := store.Count(ctx, &audit.Query{Limit: 1})
				return err
			})
		}

		// Scheduled pruning
		if cfg.Audit.PruneSchedule != "" && cfg.Audit.RetentionDays > 0 {
			pruner := retention.NewPruner(store, &retention.Config{
				RetentionDays: cfg.Audit.RetentionDays,
				PruneSchedule: cfg.Audit.PruneSchedule,
			})
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("audit retention scheduler started", "next_pruning", next)
				}
			}
		}

		fmt.Println("✓ Audit store initialized")
	}

	// Usage accounting
	var usageStore *usage.Store
	if cfg.Limits.UsageDBPath != "" {
		usageStore, err = usage.Open(cfg.Limits.UsageDBPath)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("opening usage store: %w", err))
		}
		defer usageStore.Close()
	}

	// Rate limiting
	var limiter *limits.Limiter
	if cfg.Limits.Enabled {
		limiter = limits.New(&limits.Config{
			Enabled:           true,
			RequestsPerSecond: float64(cfg.Limits.RequestsPerSecond),
			Burst:             int64(cfg.Limits.Burst),
			MaxConcurrent:     cfg.Limits.MaxConcurrent,
		})
	}

	// Upstream client and credential carrier
	carrier := token.NewCarrier()
	client := upstream.NewClient(upstream.ClientConfig{
		APIPrefix:           cfg.Upstream.APIPrefix,
		Timeout:             cfg.Upstream.Timeout,
		Hosts:               cfg.Upstream.RegionHosts(),
		MaxIdleConns:        cfg.Upstream.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Upstream.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Upstream.IdleConnTimeout,
	}, carrier)

	// Platform event dispatch; the token lifecycle binding keeps the
	// carrier in sync with refresh and invalidation events.
	dispatcher := platform.NewDispatcher(platform.DispatcherConfig{
		DedupWindow: cfg.Platform.DedupWindow,
	})
	platform.BindTokenLifecycle(dispatcher, carrier)

	// Extension manifest
	var manifestSvc *manifest.Service
	if cfg.Manifest.Serve {
		manifestSvc, err = manifest.NewService(cfg.Manifest.Path)
		if err != nil {
			slog.Warn("manifest unavailable, /manifest.json will not be served",
				"path", cfg.Manifest.Path,
				"error", err,
			)
			manifestSvc = nil
		}
	}
	if manifestSvc != nil {
		if cfg.Manifest.Watch {
			go func() {
				if err := manifestSvc.Watch(ctx); err != nil {
					slog.Warn("manifest watcher stopped", "error", err)
				}
			}()
		}
		if checker != nil {
			checker.RegisterCheck("manifest", func(ctx context.Context) error {
				return manifestSvc.Current().Validate()
			})
		}
		fmt.Printf("✓ Manifest loaded from %s\n", cfg.Manifest.Path)
	}

	deps := &handlers.Deps{
		Client:  client,
		Carrier: carrier,
		Retry: upstream.RetryConfig{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.Retry.InitialDelay,
		},
		Throttle: upstream.ThrottleConfig{
			MaxConcurrent: cfg.Throttle.MaxConcurrent,
		},
		Dispatcher: dispatcher,
		Manifest:   manifestSvc,
		Audit:      recorder,
		Usage:      usageStore,
		Metrics:    collector,
		Tracer:     tracer,
	}

	srv := gateway.NewServer(cfg, gateway.Options{
		Deps:      deps,
		Limiter:   limiter,
		Collector: collector,
		Checker:   checker,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	fmt.Println()
	fmt.Printf("✓ Gateway listening on %s\n", cfg.Server.ListenAddress)
	if checker != nil {
		fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	}
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until context cancellation, a shutdown signal, or a
	// listener error, and drains in-flight requests before returning.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Gateway stopped")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Meridian v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("upstream configured",
		"api_prefix", cfg.Upstream.APIPrefix,
		"host_overrides", len(cfg.Upstream.Hosts),
	)
	slog.Debug("retry policy",
		"max_attempts", cfg.Retry.MaxAttempts,
		"initial_delay", cfg.Retry.InitialDelay,
	)
	if cfg.Audit.Enabled {
		slog.Debug("audit enabled", "backend", cfg.Audit.Backend)
	}
}
