package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tuxmigrate/tuxmigrate/internal/config"
	"github.com/tuxmigrate/tuxmigrate/internal/db"
	"github.com/tuxmigrate/tuxmigrate/internal/guides"
	"github.com/tuxmigrate/tuxmigrate/internal/llm"
	"github.com/tuxmigrate/tuxmigrate/internal/validate"
	"github.com/tuxmigrate/tuxmigrate/internal/workspace"
)

// ComponentMigrator produces the migrated version of a component's source.
type ComponentMigrator interface {
	MigrateComponent(ctx context.Context, componentName, guide, code string) (*llm.MigrationOutput, error)
}

// Service composes the full migration lifecycle: guide lookup, LLM migration,
// validation, persistence, and git handling.
type Service struct {
	DB       *db.DB
	Guides   *guides.Store
	Migrator ComponentMigrator // nil disables the migration call
	Pipeline *validate.Pipeline
	Git      *workspace.Git // nil disables branch and commit handling
	GitCfg   config.Git
	Log      io.Writer
}

// RunOpts holds options for one migration run.
type RunOpts struct {
	Component    string
	Workspace    *workspace.Workspace
	Steps        []string
	ValidateOnly bool // skip the LLM migration, just validate the file as-is
	Cleanup      bool // delete the migration branch when the run fails
}

// RunResult describes what happened during a migration run.
type RunResult struct {
	MigrationID string           `json:"migration_id"`
	Success     bool             `json:"success"`
	FailedStep  string           `json:"failed_step,omitempty"`
	Branch      string           `json:"branch,omitempty"`
	Commit      string           `json:"commit,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	Duration    time.Duration    `json:"-"`
	Validation  *validate.Result `json:"-"`
}

// Run migrates one component file end to end. Validation failures are
// reported in the result, not as errors; the error return is reserved for
// infrastructure problems.
func (s *Service) Run(ctx context.Context, opts RunOpts) (*RunResult, error) {
	ws := opts.Workspace
	start := time.Now()

	var guideText string
	if !opts.ValidateOnly {
		g, err := s.Guides.Load(opts.Component)
		if err != nil {
			return nil, fmt.Errorf("load migration guide: %w", err)
		}
		guideText = g.Content
	}

	migrationID, err := s.DB.CreateMigration(db.Migration{
		ComponentName: opts.Component,
		FilePath:      ws.FilePath,
		SubrepoPath:   ws.SubrepoPath,
		RepoPath:      ws.RepoPath,
		MaxRetries:    s.Pipeline.Runner.MaxRetries,
		SelectedSteps: strings.Join(opts.Steps, ","),
	})
	if err != nil {
		return nil, fmt.Errorf("create migration record: %w", err)
	}
	res := &RunResult{MigrationID: migrationID}

	branch := ""
	if s.Git != nil && s.GitCfg.Enabled {
		// Best effort: an unreachable remote should not block the migration,
		// the branch is then cut from whatever base is available locally.
		if err := s.Git.Update(s.GitCfg.BaseBranch); err != nil {
			s.logf("migration: update %s: %v", s.GitCfg.BaseBranch, err)
		}
		branch = s.GitCfg.BranchPrefix + branchSlug(opts.Component)
		s.logf("migration: creating branch %s from %s", branch, s.GitCfg.BaseBranch)
		if err := s.Git.CreateBranch(branch, s.GitCfg.BaseBranch); err != nil {
			s.fail(migrationID, start, "", fmt.Sprintf("create branch: %v", err), "")
			return nil, fmt.Errorf("create branch %s: %w", branch, err)
		}
		res.Branch = branch
	}

	code, err := ws.Read(ws.FilePath)
	if err != nil {
		s.fail(migrationID, start, "", fmt.Sprintf("read component: %v", err), branch)
		return nil, fmt.Errorf("read component file: %w", err)
	}

	if !opts.ValidateOnly && s.Migrator != nil {
		s.logf("migration: requesting migrated code for %s", opts.Component)
		out, err := s.Migrator.MigrateComponent(ctx, opts.Component, guideText, code)
		if err != nil {
			s.fail(migrationID, start, "", fmt.Sprintf("migration request: %v", err), branch)
			return nil, fmt.Errorf("migrate component: %w", err)
		}
		code = out.Code
		res.Notes = out.Notes
	}

	vres, err := s.Pipeline.Run(ctx, code, opts.Steps)
	if err != nil {
		s.fail(migrationID, start, res.Notes, fmt.Sprintf("validation: %v", err), branch)
		return nil, fmt.Errorf("run validation: %w", err)
	}
	res.Validation = vres
	res.Success = vres.Success

	// The final code carries the updated status marker even on failure.
	if err := ws.Write(ws.FilePath, vres.Code); err != nil {
		s.fail(migrationID, start, res.Notes, fmt.Sprintf("write result: %v", err), branch)
		return nil, fmt.Errorf("write migrated file: %w", err)
	}

	s.persistSteps(migrationID, vres)

	errorSummary := ""
	if !vres.Success {
		res.FailedStep = string(vres.FailedStep)
		errorSummary = s.summarize(vres)
	}

	if vres.Success && s.Git != nil && s.GitCfg.Enabled {
		msg := fmt.Sprintf("Migrate %s component", opts.Component)
		hash, err := s.Git.CommitFile(ws.AbsFile(), msg)
		if err != nil {
			s.logf("migration: commit failed: %v", err)
		} else {
			res.Commit = hash
			if s.GitCfg.Push {
				if err := s.Git.Push(branch); err != nil {
					s.logf("migration: push failed: %v", err)
				}
			}
		}
	}

	res.Duration = time.Since(start)
	if err := s.DB.CompleteMigration(migrationID, vres.Success, res.Duration, res.Notes, errorSummary, branch, res.Commit); err != nil {
		return nil, fmt.Errorf("complete migration record: %w", err)
	}

	if !vres.Success && opts.Cleanup && branch != "" {
		s.logf("migration: removing branch %s", branch)
		if err := s.Git.DeleteBranch(branch, s.GitCfg.BaseBranch); err != nil {
			s.logf("migration: delete branch: %v", err)
		}
		res.Branch = ""
	}

	if vres.Success {
		s.logf("migration: %s completed in %s", opts.Component, res.Duration.Round(time.Second))
	} else {
		s.logf("migration: %s failed at %s", opts.Component, res.FailedStep)
	}
	return res, nil
}

// SyncComponents scans the guide directory and upserts one component record
// per guide. Returns the number of components synced.
func (s *Service) SyncComponents() (int, error) {
	gs, err := s.Guides.All()
	if err != nil {
		return 0, fmt.Errorf("load guides: %w", err)
	}
	for _, g := range gs {
		_, err := s.DB.UpsertComponent(db.Component{
			Name:               g.Title,
			OldImportPath:      g.OldImportPath,
			NewImportPath:      g.NewImportPath,
			MigrationGuidePath: g.Path,
		})
		if err != nil {
			return 0, fmt.Errorf("sync component %s: %w", g.Title, err)
		}
	}
	s.logf("components: synced %d from guides", len(gs))
	return len(gs), nil
}

// persistSteps records validation steps and their remaining findings.
// Persistence failures are logged, not fatal; the migration outcome stands.
func (s *Service) persistSteps(migrationID string, vres *validate.Result) {
	for i, sr := range vres.Steps {
		llmUsed := sr.Last.RepairAttempted || sr.Attempts > 1
		stepID, err := s.DB.RecordStep(db.ValidationStep{
			MigrationID: migrationID,
			StepType:    string(sr.Step),
			StepOrder:   i,
			Attempts:    sr.Attempts,
			Status:      string(sr.Status),
			Success:     sr.Passed(),
			ErrorCount:  len(sr.Findings),
			LLMUsed:     llmUsed,
		})
		if err != nil {
			s.logf("migration: record step %s: %v", sr.Step, err)
			continue
		}
		for _, f := range sr.Findings {
			_, err := s.DB.RecordError(db.ErrorLog{
				MigrationID:      migrationID,
				ValidationStepID: nullString(stepID),
				ErrorType:        string(sr.Step),
				ErrorCode:        f.Rule,
				ErrorMessage:     f.Message,
				ErrorSeverity:    f.Severity,
				FilePath:         f.File,
				LineNumber:       nullInt(f.Line),
				ColumnNumber:     nullInt(f.Column),
			})
			if err != nil {
				s.logf("migration: record error: %v", err)
			}
		}
	}
}

func (s *Service) summarize(vres *validate.Result) string {
	for _, sr := range vres.Steps {
		if sr.Step == vres.FailedStep {
			return fmt.Sprintf("%s %s after %d attempts (%d findings)",
				sr.Step, sr.Status, sr.Attempts, len(sr.Findings))
		}
	}
	return fmt.Sprintf("%s failed", vres.FailedStep)
}

func (s *Service) fail(migrationID string, start time.Time, notes, summary, branch string) {
	if err := s.DB.CompleteMigration(migrationID, false, time.Since(start), notes, summary, branch, ""); err != nil {
		s.logf("migration: mark failed: %v", err)
	}
}

func (s *Service) logf(format string, args ...any) {
	if s.Log != nil {
		fmt.Fprintf(s.Log, format+"\n", args...)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n > 0}
}

// branchSlug lowercases a component name and folds runs of non-alphanumerics
// into single dashes.
func branchSlug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
