package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seamark-hq/meridian/pkg/cli"
	"seamark-hq/meridian/pkg/manifest"
)

var manifestFlags struct {
	file   string
	format string
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect the extension manifest",
	Long: `Validate or display the extension manifest served at /manifest.json.

Examples:
  # Validate the configured manifest
  meridian manifest validate

  # Validate a specific file
  meridian manifest validate --file ./manifest.yaml

  # Print the manifest as JSON
  meridian manifest show --format json`,
}

var manifestValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the extension manifest",
	RunE:  validateManifest,
}

var manifestShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the extension manifest",
	RunE:  showManifest,
}

func init() {
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.AddCommand(manifestValidateCmd)
	manifestCmd.AddCommand(manifestShowCmd)

	manifestCmd.PersistentFlags().StringVarP(&manifestFlags.file, "file", "f", "", "manifest file (defaults to the configured path)")
	manifestShowCmd.Flags().StringVar(&manifestFlags.format, "format", "text", "output format: text, json")
}

// manifestPath resolves the manifest file to operate on: the --file
// flag if given, otherwise the configured path.
func manifestPath() (string, error) {
	if manifestFlags.file != "" {
		return manifestFlags.file, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Manifest.Path, nil
}

func validateManifest(cmd *cobra.Command, args []string) error {
	path, err := manifestPath()
	if err != nil {
		return err
	}

	m, err := manifest.Load(path)
	if err != nil {
		return cli.NewCommandError("manifest validate", err)
	}

	fmt.Printf("✓ Manifest valid: %s\n", path)
	fmt.Printf("  Title: %s\n", m.Title)
	fmt.Printf("  URL: %s\n", m.URL)
	fmt.Printf("  Enabled: %t\n", m.IsEnabled())
	return nil
}

func showManifest(cmd *cobra.Command, args []string) error {
	path, err := manifestPath()
	if err != nil {
		return err
	}

	m, err := manifest.Load(path)
	if err != nil {
		return cli.NewCommandError("manifest show", err)
	}

	if manifestFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, m)
	}

	fmt.Printf("Title:       %s\n", m.Title)
	fmt.Printf("URL:         %s\n", m.URL)
	fmt.Printf("Description: %s\n", m.Description)
	fmt.Printf("Enabled:     %t\n", m.IsEnabled())
	if m.Icon != "" {
		fmt.Printf("Icon:        %s\n", m.Icon)
	}
	if m.InfoURL != "" {
		fmt.Printf("Info URL:    %s\n", m.InfoURL)
	}
	if m.ConfigCommand != "" {
		fmt.Printf("Config Cmd:  %s\n", m.ConfigCommand)
	}
	return nil
}
