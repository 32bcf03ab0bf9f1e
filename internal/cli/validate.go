package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tuxmigrate/tuxmigrate/internal/guides"
	"github.com/tuxmigrate/tuxmigrate/internal/llm"
	"github.com/tuxmigrate/tuxmigrate/internal/migration"
	"github.com/tuxmigrate/tuxmigrate/internal/validate"
	"github.com/tuxmigrate/tuxmigrate/internal/workspace"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Run the validation pipeline on a file without migrating it",
	Long: `Validate a file through the configured steps. With --fix, failing
checks are sent to the LLM for repair between retries; without it, each
step gets its single check per attempt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		m := &cfg.Migration
		if v, _ := cmd.Flags().GetString("repo"); v != "" {
			m.RepoPath = v
		}
		if v, _ := cmd.Flags().GetString("subrepo"); v != "" {
			m.SubrepoPath = v
		}
		if v, _ := cmd.Flags().GetInt("retries"); v > 0 {
			m.MaxRetries = v
		}
		if v, _ := cmd.Flags().GetStringSlice("steps"); len(v) > 0 {
			m.Steps = v
		}
		if m.RepoPath == "" {
			return fmt.Errorf("repository path required (set migration.repo_path or --repo)")
		}

		ws, err := workspace.New(m.RepoPath, m.SubrepoPath, file)
		if err != nil {
			return err
		}

		var repairer validate.Repairer
		if fix, _ := cmd.Flags().GetBool("fix"); fix {
			client, err := newCompleter(cfg)
			if err != nil {
				return err
			}
			repairer = llm.NewRepairService(client)
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		out := cmd.OutOrStdout()
		svc := &migration.Service{
			DB:       database,
			Guides:   guides.NewStore(m.GuideDir),
			Pipeline: buildPipeline(cfg, ws, repairer, out),
			Log:      out,
		}

		component := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		res, err := svc.Run(cmd.Context(), migration.RunOpts{
			Component:    component,
			Workspace:    ws,
			Steps:        m.Steps,
			ValidateOnly: true,
		})
		if err != nil {
			return err
		}

		if res.Success {
			fmt.Fprintf(out, "\nAll validation steps passed (%s)\n", res.MigrationID)
			return nil
		}
		return fmt.Errorf("validation failed at step %s", res.FailedStep)
	},
}

func init() {
	validateCmd.Flags().String("repo", "", "Repository root path")
	validateCmd.Flags().String("subrepo", "", "Subdirectory the checks run in")
	validateCmd.Flags().Int("retries", 0, "Max attempts per validation step")
	validateCmd.Flags().StringSlice("steps", nil, "Validation steps to run (eslint, build, tsc)")
	validateCmd.Flags().Bool("fix", false, "Repair failing checks with the LLM between retries")
}
