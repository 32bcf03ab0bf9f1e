package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tuxmigrate/tuxmigrate/internal/guides"
	"github.com/tuxmigrate/tuxmigrate/internal/llm"
	"github.com/tuxmigrate/tuxmigrate/internal/migration"
	"github.com/tuxmigrate/tuxmigrate/internal/workspace"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <component> <file>",
	Short: "Migrate a component file and validate the result",
	Long: `Migrate one component file using its migration guide, then run the
validation pipeline (eslint, build, tsc by default) with LLM-assisted
repair retries. The file is updated in place and the run is recorded
in the migration history.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		component, file := args[0], args[1]

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
		if noGit, _ := cmd.Flags().GetBool("no-git"); noGit {
			m.Git.Enabled = false
		}
		if m.RepoPath == "" {
			return fmt.Errorf("repository path required (set migration.repo_path or --repo)")
		}

		ws, err := workspace.New(m.RepoPath, m.SubrepoPath, file)
		if err != nil {
			return err
		}

		client, err := newCompleter(cfg)
		if err != nil {
			return err
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
			Migrator: llm.NewMigrator(client),
			Pipeline: buildPipeline(cfg, ws, llm.NewRepairService(client), out),
			GitCfg:   m.Git,
			Log:      out,
		}
		if m.Git.Enabled {
			svc.Git = workspace.NewGit(&workspace.ExecGit{}, m.RepoPath)
		}

		cleanup, _ := cmd.Flags().GetBool("cleanup")
		res, err := svc.Run(cmd.Context(), migration.RunOpts{
			Component: component,
			Workspace: ws,
			Steps:     m.Steps,
			Cleanup:   cleanup,
		})
		if err != nil {
			return err
		}

		if res.Success {
			fmt.Fprintf(out, "\nMigration %s completed in %s\n", res.MigrationID, res.Duration.Round(time.Second))
			if res.Branch != "" {
				fmt.Fprintf(out, "  Branch: %s\n", res.Branch)
			}
			if res.Commit != "" {
				fmt.Fprintf(out, "  Commit: %s\n", res.Commit)
			}
			if res.Notes != "" {
				fmt.Fprintf(out, "  Notes:  %s\n", res.Notes)
			}
			return nil
		}
		return fmt.Errorf("migration %s failed at step %s", res.MigrationID, res.FailedStep)
	},
}

func init() {
	migrateCmd.Flags().String("repo", "", "Repository root path")
	migrateCmd.Flags().String("subrepo", "", "Subdirectory the checks run in")
	migrateCmd.Flags().Int("retries", 0, "Max attempts per validation step")
	migrateCmd.Flags().StringSlice("steps", nil, "Validation steps to run (eslint, build, tsc)")
	migrateCmd.Flags().Bool("no-git", false, "Skip branch creation and commit")
	migrateCmd.Flags().Bool("cleanup", false, "Delete the migration branch when the run fails")
}
