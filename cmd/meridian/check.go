package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"seamark-hq/meridian/pkg/region"
	"seamark-hq/meridian/pkg/token"
	"seamark-hq/meridian/pkg/upstream"
)

var checkFlags struct {
	timeout time.Duration
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe regional host reachability",
	Long: `Probe each regional vendor host and report whether it answers
within the timeout. Any HTTP response counts as reachable; only network
failures and timeouts are reported as down.

Examples:
  # Probe with the configured upstream timeout
  meridian check

  # Probe with a shorter timeout
  meridian check --timeout 2s`,
	RunE: checkRegions,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&checkFlags.timeout, "timeout", 0, "per-host probe timeout (defaults to the configured upstream timeout)")
}

type probeResult struct {
	region region.Region
	host   string
	status string
	took   time.Duration
}

func checkRegions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	timeout := checkFlags.timeout
	if timeout == 0 {
		timeout = cfg.Upstream.Timeout
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	client := upstream.NewClient(upstream.ClientConfig{
		Hosts:   cfg.Upstream.RegionHosts(),
		Timeout: timeout,
	}, token.NewCarrier())

	probe := &http.Client{Timeout: timeout}
	regions := region.All()
	results := make([]probeResult, len(regions))

	var wg sync.WaitGroup
	for i, r := range regions {
		wg.Add(1)
		go func(i int, r region.Region) {
			defer wg.Done()
			results[i] = probeHost(cmd.Context(), probe, r, client.ResolveHost(r))
		}(i, r)
	}
	wg.Wait()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tHOST\tSTATUS\tLATENCY")
	down := 0
	for _, res := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.region, res.host, res.status, res.took.Round(time.Millisecond))
		if res.status != "reachable" {
			down++
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	if down > 0 {
		return fmt.Errorf("%d of %d regional hosts unreachable", down, len(regions))
	}
	fmt.Printf("✓ All %d regional hosts reachable\n", len(regions))
	return nil
}

// probeHost issues a HEAD request to the host root. The vendor answers
// 401 or 404 for unauthenticated probes; any response at all proves the
// host is up.
func probeHost(ctx context.Context, client *http.Client, r region.Region, host string) probeResult {
	result := probeResult{region: r, host: host}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, host, nil)
	if err != nil {
		result.status = fmt.Sprintf("error: %v", err)
		return result
	}

	resp, err := client.Do(req)
	result.took = time.Since(start)
	if err != nil {
		result.status = "unreachable"
		return result
	}
	resp.Body.Close()

	result.status = "reachable"
	return result
}
