package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tuxmigrate/tuxmigrate/internal/analytics"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent migration runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		component, _ := cmd.Flags().GetString("component")
		limit, _ := cmd.Flags().GetInt("limit")

		migrations, err := database.ListMigrations(component, limit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(migrations) == 0 {
			fmt.Fprintln(w, "No migrations found.")
			return nil
		}

		fmt.Fprintf(w, "%-36s %-16s %-10s %-10s %s\n", "ID", "COMPONENT", "STATUS", "DURATION", "FILE")
		fmt.Fprintf(w, "%-36s %-16s %-10s %-10s %s\n",
			strings.Repeat("-", 36),
			strings.Repeat("-", 16),
			strings.Repeat("-", 10),
			strings.Repeat("-", 10),
			strings.Repeat("-", 4))
		for _, m := range migrations {
			duration := "-"
			if m.DurationMs.Valid {
				duration = fmt.Sprintf("%.1fs", float64(m.DurationMs.Int64)/1000)
			}
			fmt.Fprintf(w, "%-36s %-16s %-10s %-10s %s\n",
				m.ID, m.ComponentName, m.Status, duration, m.FilePath)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <migration-id>",
	Short: "Show the step and error timeline for one migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		m, err := database.GetMigration(args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Migration %s: %s\n", m.ID, m.ComponentName)
		fmt.Fprintf(w, "  File:    %s\n", m.FilePath)
		fmt.Fprintf(w, "  Status:  %s\n", m.Status)
		fmt.Fprintf(w, "  Started: %s\n", m.StartedAt)
		if m.CompletedAt.Valid {
			fmt.Fprintf(w, "  Ended:   %s\n", m.CompletedAt.String)
		}
		if m.BranchName != "" {
			fmt.Fprintf(w, "  Branch:  %s\n", m.BranchName)
		}
		if m.CommitHash != "" {
			fmt.Fprintf(w, "  Commit:  %s\n", m.CommitHash)
		}
		if m.MigrationNotes != "" {
			fmt.Fprintf(w, "  Notes:   %s\n", m.MigrationNotes)
		}
		if m.ErrorSummary != "" {
			fmt.Fprintf(w, "  Error:   %s\n", m.ErrorSummary)
		}

		events, err := analytics.QueryMigrationDetail(database, m.ID)
		if err != nil {
			return err
		}
		if len(events) > 0 {
			fmt.Fprintln(w, "  Timeline:")
			for _, e := range events {
				fmt.Fprintf(w, "    %s  [%s] %s: %s\n", e.Timestamp, e.Type, e.Event, e.Detail)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyShowCmd)

	historyCmd.Flags().String("component", "", "Filter by component name")
	historyCmd.Flags().Int("limit", 20, "Max migrations to show")
}
