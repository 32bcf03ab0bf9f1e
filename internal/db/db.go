package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
	path string
}

// DefaultDBPath returns ~/.tuxmigrate/tuxmigrate.db, creating the directory
// if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	dir := filepath.Join(home, ".tuxmigrate")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}
	return filepath.Join(dir, "tuxmigrate.db"), nil
}

// Open opens or creates the database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &DB{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying *sql.DB for advanced queries.
func (d *DB) Conn() *sql.DB {
	return d.conn
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS components (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL UNIQUE,
    description          TEXT,
    old_import_path      TEXT,
    new_import_path      TEXT,
    migration_guide_path TEXT,
    is_active            BOOLEAN NOT NULL DEFAULT TRUE,
    created_at           TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at           TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS migrations (
    id              TEXT PRIMARY KEY,
    component_name  TEXT NOT NULL,
    file_path       TEXT NOT NULL,
    subrepo_path    TEXT,
    repo_path       TEXT,
    max_retries     INTEGER NOT NULL DEFAULT 3,
    selected_steps  TEXT,
    status          TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending','running','completed','failed')),
    overall_success BOOLEAN,
    branch_name     TEXT,
    commit_hash     TEXT,
    migration_notes TEXT,
    error_summary   TEXT,
    started_at      TEXT NOT NULL DEFAULT (datetime('now')),
    completed_at    TEXT,
    duration_ms     INTEGER
);
CREATE INDEX IF NOT EXISTS idx_migrations_component ON migrations(component_name, started_at DESC);

CREATE TABLE IF NOT EXISTS validation_steps (
    id            TEXT PRIMARY KEY,
    migration_id  TEXT NOT NULL REFERENCES migrations(id) ON DELETE CASCADE,
    step_type     TEXT NOT NULL,
    step_order    INTEGER NOT NULL,
    attempts      INTEGER NOT NULL DEFAULT 1,
    status        TEXT NOT NULL,
    success       BOOLEAN NOT NULL,
    error_count   INTEGER NOT NULL DEFAULT 0,
    llm_used      BOOLEAN NOT NULL DEFAULT FALSE,
    duration_ms   INTEGER,
    created_at    TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_steps_migration ON validation_steps(migration_id, step_order);

CREATE TABLE IF NOT EXISTS error_logs (
    id                 TEXT PRIMARY KEY,
    migration_id       TEXT NOT NULL REFERENCES migrations(id) ON DELETE CASCADE,
    validation_step_id TEXT REFERENCES validation_steps(id) ON DELETE CASCADE,
    error_type         TEXT NOT NULL,
    error_code         TEXT,
    error_message      TEXT NOT NULL,
    error_severity     INTEGER NOT NULL DEFAULT 2,
    file_path          TEXT,
    line_number        INTEGER,
    column_number      INTEGER,
    created_at         TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_errors_migration ON error_logs(migration_id);
`

// Migrate applies the database schema.
func (d *DB) Migrate() error {
	var count int
	err := d.conn.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = 1").Scan(&count)
	if err == nil && count > 0 {
		return nil
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaV1); err != nil {
		return fmt.Errorf("apply schema v1: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Reset drops all tables and re-applies the schema.
func (d *DB) Reset() error {
	tables := []string{"error_logs", "validation_steps", "migrations", "components", "schema_version"}
	for _, t := range tables {
		if _, err := d.conn.Exec("DROP TABLE IF EXISTS " + t); err != nil {
			return fmt.Errorf("drop table %s: %w", t, err)
		}
	}
	return d.Migrate()
}
