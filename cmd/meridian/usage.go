package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"seamark-hq/meridian/pkg/cli"
	"seamark-hq/meridian/pkg/limits/usage"
)

var usageFlags struct {
	db   string
	days int
	day  string
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show daily per-region usage counters",
	Long: `Show the gateway's daily per-region request and failure counters
from the usage database.

Examples:
  # Show the last 7 days
  meridian usage

  # Show the last 30 days
  meridian usage --days 30

  # Show a single day
  meridian usage --day 2026-08-20

  # Read a specific database file
  meridian usage --db /var/lib/meridian/usage.db`,
	RunE: showUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().StringVar(&usageFlags.db, "db", "", "usage database path (defaults to the configured path)")
	usageCmd.Flags().IntVar(&usageFlags.days, "days", 7, "how many days back to show")
	usageCmd.Flags().StringVar(&usageFlags.day, "day", "", "show a single day (YYYY-MM-DD)")
}

func showUsage(cmd *cobra.Command, args []string) error {
	path := usageFlags.db
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Limits.UsageDBPath
	}
	if path == "" {
		return cli.NewConfigError("limits.usage_db_path", "no usage database configured")
	}

	store, err := usage.Open(path)
	if err != nil {
		return cli.NewCommandError("usage", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	var rows []*usage.Daily
	if usageFlags.day != "" {
		if _, err := time.Parse(usage.DayFormat, usageFlags.day); err != nil {
			return cli.NewConfigError("day", fmt.Sprintf("not a %s date: %v", usage.DayFormat, err))
		}
		rows, err = store.Day(ctx, usageFlags.day)
	} else {
		days := usageFlags.days
		if days < 1 {
			days = 1
		}
		to := time.Now()
		from := to.AddDate(0, 0, -(days - 1))
		rows, err = store.Range(ctx, from.Format(usage.DayFormat), to.Format(usage.DayFormat))
	}
	if err != nil {
		return cli.NewCommandError("usage", err)
	}

	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No usage recorded.")
		return nil
	}

	var requests, failures int64
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tREGION\tREQUESTS\tFAILURES")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", row.Day, row.Region, row.Requests, row.Failures)
		requests += row.Requests
		failures += row.Failures
	}
	fmt.Fprintf(w, "TOTAL\t\t%d\t%d\n", requests, failures)
	return w.Flush()
}
