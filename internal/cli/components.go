package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tuxmigrate/tuxmigrate/internal/guides"
	"github.com/tuxmigrate/tuxmigrate/internal/migration"
)

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Manage the migratable component catalog",
}

var componentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known components and their import paths",
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

		components, err := database.ListComponents()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(components) == 0 {
			fmt.Fprintln(w, "No components found. Run `tuxmigrate components sync` first.")
			return nil
		}

		fmt.Fprintf(w, "%-20s %-30s %s\n", "NAME", "OLD IMPORT", "NEW IMPORT")
		fmt.Fprintf(w, "%-20s %-30s %s\n", strings.Repeat("-", 20), strings.Repeat("-", 30), strings.Repeat("-", 10))
		for _, c := range components {
			fmt.Fprintf(w, "%-20s %-30s %s\n", c.Name, c.OldImportPath, c.NewImportPath)
		}
		return nil
	},
}

var componentsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the component catalog from the migration guide directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		guideDir := cfg.Migration.GuideDir
		if v, _ := cmd.Flags().GetString("guides"); v != "" {
			guideDir = v
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		svc := &migration.Service{
			DB:     database,
			Guides: guides.NewStore(guideDir),
			Log:    cmd.OutOrStdout(),
		}
		n, err := svc.SyncComponents()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d components from %s\n", n, guideDir)
		return nil
	},
}

func init() {
	componentsCmd.AddCommand(componentsListCmd)
	componentsCmd.AddCommand(componentsSyncCmd)

	componentsSyncCmd.Flags().String("guides", "", "Migration guide directory (overrides config)")
}
