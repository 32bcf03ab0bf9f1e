package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Component is a row in the components table.
type Component struct {
	ID                 string
	Name               string
	Description        string
	OldImportPath      string
	NewImportPath      string
	MigrationGuidePath string
	IsActive           bool
	CreatedAt          string
	UpdatedAt          string
}

// Migration is a row in the migrations table.
type Migration struct {
	ID             string
	ComponentName  string
	FilePath       string
	SubrepoPath    string
	RepoPath       string
	MaxRetries     int
	SelectedSteps  string
	Status         string
	OverallSuccess sql.NullBool
	BranchName     string
	CommitHash     string
	MigrationNotes string
	ErrorSummary   string
	StartedAt      string
	CompletedAt    sql.NullString
	DurationMs     sql.NullInt64
}

// ValidationStep is a row in the validation_steps table.
type ValidationStep struct {
	ID          string
	MigrationID string
	StepType    string
	StepOrder   int
	Attempts    int
	Status      string
	Success     bool
	ErrorCount  int
	LLMUsed     bool
	DurationMs  sql.NullInt64
	CreatedAt   string
}

// ErrorLog is a row in the error_logs table.
type ErrorLog struct {
	ID               string
	MigrationID      string
	ValidationStepID sql.NullString
	ErrorType        string
	ErrorCode        string
	ErrorMessage     string
	ErrorSeverity    int
	FilePath         string
	LineNumber       sql.NullInt64
	ColumnNumber     sql.NullInt64
	CreatedAt        string
}

// UpsertComponent inserts a component by name or updates its import paths and
// guide path if it already exists. Returns the component id.
func (d *DB) UpsertComponent(c Component) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := d.conn.Exec(`
		INSERT INTO components (id, name, description, old_import_path, new_import_path, migration_guide_path)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			old_import_path = excluded.old_import_path,
			new_import_path = excluded.new_import_path,
			migration_guide_path = excluded.migration_guide_path,
			updated_at = datetime('now')`,
		c.ID, c.Name, c.Description, c.OldImportPath, c.NewImportPath, c.MigrationGuidePath)
	if err != nil {
		return "", fmt.Errorf("upsert component %s: %w", c.Name, err)
	}
	var id string
	if err := d.conn.QueryRow("SELECT id FROM components WHERE name = ?", c.Name).Scan(&id); err != nil {
		return "", fmt.Errorf("fetch component id: %w", err)
	}
	return id, nil
}

// GetComponent fetches a component by name.
func (d *DB) GetComponent(name string) (*Component, error) {
	row := d.conn.QueryRow(`
		SELECT id, name, description, old_import_path, new_import_path, migration_guide_path, is_active, created_at, updated_at
		FROM components WHERE name = ?`, name)
	var c Component
	var desc, oldPath, newPath, guidePath sql.NullString
	err := row.Scan(&c.ID, &c.Name, &desc, &oldPath, &newPath, &guidePath, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("component %s not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("get component %s: %w", name, err)
	}
	c.Description = desc.String
	c.OldImportPath = oldPath.String
	c.NewImportPath = newPath.String
	c.MigrationGuidePath = guidePath.String
	return &c, nil
}

// ListComponents returns all active components ordered by name.
func (d *DB) ListComponents() ([]Component, error) {
	rows, err := d.conn.Query(`
		SELECT id, name, description, old_import_path, new_import_path, migration_guide_path, is_active, created_at, updated_at
		FROM components WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	var out []Component
	for rows.Next() {
		var c Component
		var desc, oldPath, newPath, guidePath sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &desc, &oldPath, &newPath, &guidePath, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		c.Description = desc.String
		c.OldImportPath = oldPath.String
		c.NewImportPath = newPath.String
		c.MigrationGuidePath = guidePath.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateMigration inserts a new migration record with status running and
// returns its id.
func (d *DB) CreateMigration(m Migration) (string, error) {
	id := m.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := d.conn.Exec(`
		INSERT INTO migrations (id, component_name, file_path, subrepo_path, repo_path, max_retries, selected_steps, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'running')`,
		id, m.ComponentName, m.FilePath, m.SubrepoPath, m.RepoPath, m.MaxRetries, m.SelectedSteps)
	if err != nil {
		return "", fmt.Errorf("create migration: %w", err)
	}
	return id, nil
}

// CompleteMigration marks a migration finished and records its outcome.
func (d *DB) CompleteMigration(id string, success bool, duration time.Duration, notes, errorSummary, branch, commit string) error {
	status := "completed"
	if !success {
		status = "failed"
	}
	_, err := d.conn.Exec(`
		UPDATE migrations SET
			status = ?, overall_success = ?, duration_ms = ?,
			migration_notes = ?, error_summary = ?, branch_name = ?, commit_hash = ?,
			completed_at = datetime('now')
		WHERE id = ?`,
		status, success, duration.Milliseconds(), notes, errorSummary, branch, commit, id)
	if err != nil {
		return fmt.Errorf("complete migration %s: %w", id, err)
	}
	return nil
}

// GetMigration fetches a migration by id.
func (d *DB) GetMigration(id string) (*Migration, error) {
	row := d.conn.QueryRow(`
		SELECT id, component_name, file_path, subrepo_path, repo_path, max_retries, selected_steps,
		       status, overall_success, branch_name, commit_hash, migration_notes, error_summary,
		       started_at, completed_at, duration_ms
		FROM migrations WHERE id = ?`, id)
	m, err := scanMigration(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("migration %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get migration %s: %w", id, err)
	}
	return m, nil
}

// ListMigrations returns the most recent migrations, newest first. A non-empty
// component filters by component name; limit <= 0 means no limit.
func (d *DB) ListMigrations(component string, limit int) ([]Migration, error) {
	query := `
		SELECT id, component_name, file_path, subrepo_path, repo_path, max_retries, selected_steps,
		       status, overall_success, branch_name, commit_hash, migration_notes, error_summary,
		       started_at, completed_at, duration_ms
		FROM migrations`
	var args []any
	if component != "" {
		query += " WHERE component_name = ?"
		args = append(args, component)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()

	var out []Migration
	for rows.Next() {
		m, err := scanMigration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMigration(s scanner) (*Migration, error) {
	var m Migration
	var subrepo, repo, steps, branch, commit, notes, errSummary sql.NullString
	err := s.Scan(&m.ID, &m.ComponentName, &m.FilePath, &subrepo, &repo, &m.MaxRetries, &steps,
		&m.Status, &m.OverallSuccess, &branch, &commit, &notes, &errSummary,
		&m.StartedAt, &m.CompletedAt, &m.DurationMs)
	if err != nil {
		return nil, err
	}
	m.SubrepoPath = subrepo.String
	m.RepoPath = repo.String
	m.SelectedSteps = steps.String
	m.BranchName = branch.String
	m.CommitHash = commit.String
	m.MigrationNotes = notes.String
	m.ErrorSummary = errSummary.String
	return &m, nil
}

// RecordStep inserts a validation step result and returns its id.
func (d *DB) RecordStep(s ValidationStep) (string, error) {
	id := s.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := d.conn.Exec(`
		INSERT INTO validation_steps (id, migration_id, step_type, step_order, attempts, status, success, error_count, llm_used, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.MigrationID, s.StepType, s.StepOrder, s.Attempts, s.Status, s.Success, s.ErrorCount, s.LLMUsed, s.DurationMs)
	if err != nil {
		return "", fmt.Errorf("record step %s: %w", s.StepType, err)
	}
	return id, nil
}

// StepsForMigration returns a migration's validation steps in pipeline order.
func (d *DB) StepsForMigration(migrationID string) ([]ValidationStep, error) {
	rows, err := d.conn.Query(`
		SELECT id, migration_id, step_type, step_order, attempts, status, success, error_count, llm_used, duration_ms, created_at
		FROM validation_steps WHERE migration_id = ? ORDER BY step_order`, migrationID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var out []ValidationStep
	for rows.Next() {
		var s ValidationStep
		if err := rows.Scan(&s.ID, &s.MigrationID, &s.StepType, &s.StepOrder, &s.Attempts, &s.Status,
			&s.Success, &s.ErrorCount, &s.LLMUsed, &s.DurationMs, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RecordError inserts an error log entry and returns its id.
func (d *DB) RecordError(e ErrorLog) (string, error) {
	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := d.conn.Exec(`
		INSERT INTO error_logs (id, migration_id, validation_step_id, error_type, error_code, error_message, error_severity, file_path, line_number, column_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.MigrationID, e.ValidationStepID, e.ErrorType, e.ErrorCode, e.ErrorMessage, e.ErrorSeverity, e.FilePath, e.LineNumber, e.ColumnNumber)
	if err != nil {
		return "", fmt.Errorf("record error: %w", err)
	}
	return id, nil
}

// ErrorsForMigration returns a migration's error log entries, oldest first.
func (d *DB) ErrorsForMigration(migrationID string) ([]ErrorLog, error) {
	rows, err := d.conn.Query(`
		SELECT id, migration_id, validation_step_id, error_type, error_code, error_message, error_severity, file_path, line_number, column_number, created_at
		FROM error_logs WHERE migration_id = ? ORDER BY created_at, id`, migrationID)
	if err != nil {
		return nil, fmt.Errorf("list errors: %w", err)
	}
	defer rows.Close()

	var out []ErrorLog
	for rows.Next() {
		var e ErrorLog
		var code, file sql.NullString
		if err := rows.Scan(&e.ID, &e.MigrationID, &e.ValidationStepID, &e.ErrorType, &code, &e.ErrorMessage,
			&e.ErrorSeverity, &file, &e.LineNumber, &e.ColumnNumber, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error log: %w", err)
		}
		e.ErrorCode = code.String
		e.FilePath = file.String
		out = append(out, e)
	}
	return out, rows.Err()
}
