package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tuxmigrate/tuxmigrate/internal/analytics"
	"github.com/tuxmigrate/tuxmigrate/internal/db"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Query migration performance analytics",
}

func withAnalyticsDB(cmd *cobra.Command, fn func(d *db.DB, since string) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	since, _ := cmd.Flags().GetString("since")
	return fn(database, since)
}

var analyticsOverviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Aggregate migration counts, success rate, and durations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalyticsDB(cmd, func(d *db.DB, since string) error {
			o, err := analytics.QueryOverview(d, since)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Migrations:    %d (%d completed, %d failed, %d running)\n",
				o.Total, o.Completed, o.Failed, o.Running)
			fmt.Fprintf(w, "Success rate:  %.1f%%\n", o.SuccessRate)
			fmt.Fprintf(w, "Avg duration:  %.1fs\n", o.AvgDuration)
			fmt.Fprintf(w, "Unique files:  %d\n", o.UniqueFiles)
			return nil
		})
	},
}

var analyticsComponentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Per-component success rates, worst first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalyticsDB(cmd, func(d *db.DB, since string) error {
			results, err := analytics.QueryComponentStats(d, since)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(w, "No migrations recorded.")
				return nil
			}
			fmt.Fprintf(w, "%-20s %-8s %-10s %s\n", "COMPONENT", "RUNS", "SUCCESS", "AVG DURATION")
			fmt.Fprintf(w, "%-20s %-8s %-10s %s\n",
				strings.Repeat("-", 20), strings.Repeat("-", 8), strings.Repeat("-", 10), strings.Repeat("-", 12))
			for _, cs := range results {
				fmt.Fprintf(w, "%-20s %-8d %-10s %.1fs\n",
					cs.Component, cs.Total, fmt.Sprintf("%.1f%%", cs.SuccessRate), cs.AvgDuration)
			}
			return nil
		})
	},
}

var analyticsStepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Pass rates, retry counts, and common errors per validation step",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalyticsDB(cmd, func(d *db.DB, since string) error {
			results, err := analytics.QueryStepStats(d, since)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(w, "No validation steps recorded.")
				return nil
			}
			fmt.Fprintf(w, "%-10s %-8s %-10s %-10s %-10s %s\n", "STEP", "RUNS", "PASS", "ATTEMPTS", "LLM USED", "COMMON ERRORS")
			fmt.Fprintf(w, "%-10s %-8s %-10s %-10s %-10s %s\n",
				strings.Repeat("-", 10), strings.Repeat("-", 8), strings.Repeat("-", 10),
				strings.Repeat("-", 10), strings.Repeat("-", 10), strings.Repeat("-", 13))
			for _, ss := range results {
				fmt.Fprintf(w, "%-10s %-8d %-10s %-10.1f %-10s %s\n",
					ss.StepType, ss.Total,
					fmt.Sprintf("%.1f%%", ss.PassRate),
					ss.AvgAttempts,
					fmt.Sprintf("%.1f%%", ss.LLMUsedRate),
					ss.CommonErrors)
			}
			return nil
		})
	},
}

var analyticsTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Weekly migration throughput",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalyticsDB(cmd, func(d *db.DB, since string) error {
			results, err := analytics.QueryWeeklyTrend(d, since)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(w, "No migrations recorded.")
				return nil
			}
			fmt.Fprintf(w, "%-10s %-10s %-12s %-10s %s\n", "WEEK", "STARTED", "COMPLETED", "FAILED", "SUCCESS")
			fmt.Fprintf(w, "%-10s %-10s %-12s %-10s %s\n",
				strings.Repeat("-", 10), strings.Repeat("-", 10), strings.Repeat("-", 12),
				strings.Repeat("-", 10), strings.Repeat("-", 7))
			for _, wt := range results {
				fmt.Fprintf(w, "%-10s %-10d %-12d %-10d %.1f%%\n",
					wt.Period, wt.Started, wt.Completed, wt.Failed, wt.SuccessRate)
			}
			return nil
		})
	},
}

func init() {
	analyticsCmd.AddCommand(analyticsOverviewCmd)
	analyticsCmd.AddCommand(analyticsComponentsCmd)
	analyticsCmd.AddCommand(analyticsStepsCmd)
	analyticsCmd.AddCommand(analyticsTrendCmd)

	analyticsCmd.PersistentFlags().String("since", "", "Only include migrations started at or after this timestamp (YYYY-MM-DD HH:MM:SS)")
}
