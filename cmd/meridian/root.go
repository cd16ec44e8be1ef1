package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seamark-hq/meridian/pkg/cli"
	"seamark-hq/meridian/pkg/config"
)

const defaultConfigFile = "config.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Meridian - regional API proxy for SaaS extensions",
	Long: `Meridian is a regional API proxy that fronts a vendor's regional
REST surface on behalf of a browser-embedded frontend extension.

It provides:
  - Region-aware routing to the US, EUROPE, and APAC vendor hosts
  - Bearer credential carriage without persistence
  - Retry with exponential backoff and windowed batch throttling
  - Host-platform event ingestion (token refresh, commands)
  - Extension manifest serving with hot reload`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig resolves the effective configuration for a subcommand.
// A missing file at the default path falls back to built-in defaults;
// an explicitly requested file must exist.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err != nil {
		if os.IsNotExist(err) && cfgFile == defaultConfigFile {
			cfg := config.NewDefault()
			config.SetConfig(cfg)
			return cfg, nil
		}
		return nil, cli.NewConfigError("config", fmt.Sprintf("cannot read %s: %v", cfgFile, err))
	}

	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("config", fmt.Sprintf("failed to load %s: %v", cfgFile, err))
	}
	return config.GetConfig(), nil
}
