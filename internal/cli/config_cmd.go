package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tuxmigrate/tuxmigrate/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate the migration config",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *config.MigrationConfig
		var err error
		if len(args) == 1 {
			cfg, err = config.Load(args[0])
		} else {
			cfg, err = loadConfig()
		}
		if err != nil {
			return err
		}

		errs := config.Validate(cfg)
		w := cmd.OutOrStdout()
		if len(errs) == 0 {
			fmt.Fprintln(w, "Config is valid.")
			return nil
		}
		for _, e := range errs {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
		return fmt.Errorf("%d validation error(s)", len(errs))
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective config after defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		m := cfg.Migration

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "repo_path:    %s\n", m.RepoPath)
		fmt.Fprintf(w, "subrepo_path: %s\n", m.SubrepoPath)
		fmt.Fprintf(w, "guide_dir:    %s\n", m.GuideDir)
		fmt.Fprintf(w, "db_path:      %s\n", m.DBPath)
		fmt.Fprintf(w, "max_retries:  %d\n", m.MaxRetries)
		fmt.Fprintf(w, "steps:        %v\n", m.Steps)
		fmt.Fprintf(w, "llm.model:    %s\n", m.LLM.Model)
		fmt.Fprintf(w, "git.enabled:  %t (base %s, prefix %s, push %t)\n",
			m.Git.Enabled, m.Git.BaseBranch, m.Git.BranchPrefix, m.Git.Push)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
