package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tuxmigrate",
	Short: "LLM-assisted UI component migration",
	Long: `tuxmigrate migrates UI components between design systems using migration
guides and an LLM, then validates the result through lint, build, and
TypeScript checks with automated repair retries.

Migration history is stored in ~/.tuxmigrate/tuxmigrate.db (SQLite).`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./tuxmigrate.yaml, ~/.tuxmigrate/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(componentsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(templatesCmd)
}
