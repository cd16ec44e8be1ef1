package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"seamark-hq/meridian/pkg/region"
	"seamark-hq/meridian/pkg/token"
	"seamark-hq/meridian/pkg/upstream"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List regions and their vendor hosts",
	Long: `List the canonical regions and the vendor host each resolves to,
honoring any host overrides in the configuration.`,
	RunE: listRegions,
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}

func listRegions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := upstream.NewClient(upstream.ClientConfig{
		Hosts: cfg.Upstream.RegionHosts(),
	}, token.NewCarrier())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tHOST")
	for _, r := range region.All() {
		fmt.Fprintf(w, "%s\t%s\n", r, client.ResolveHost(r))
	}
	return w.Flush()
}
