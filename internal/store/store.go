// Package store persists validation run history to SQLite.
//
// The database lives under the validator's temp directory and is created
// lazily on the first stored run. Each run gets a time-ordered UUIDv7 id;
// every emitted test result is recorded in emission order so a run can be
// replayed or diffed later.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// FileName is the database file inside the validator temp dir.
const FileName = "runs.db"

// Store provides durable storage for validation run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the run database at path, applying pragmas and the
// schema. Idempotent; safe to call against an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time; keep a single connection
	// to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenInDir opens the run database inside dir.
func OpenInDir(dir string) (*Store, error) {
	return Open(filepath.Join(dir, FileName))
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Run is one recorded validation run.
type Run struct {
	ID        string
	StartedAt time.Time
	Passed    int
	Failed    int
	Skipped   int
	Warnings  int
}

// Result is one recorded test result.
type Result struct {
	RunID    string
	Seq      int
	Path     string
	PluginID string
	Test     string
	Status   string
	Details  string
}

// BeginRun inserts a new run row and returns its UUIDv7 id.
func (s *Store) BeginRun(ctx context.Context, startedAt time.Time) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// WriteResult appends one test result to a run. seq is the emission order
// within the run; duplicate (run, seq) pairs are rejected by the schema.
func (s *Store) WriteResult(ctx context.Context, r Result) error {
	var pluginID any
	if r.PluginID != "" {
		pluginID = r.PluginID
	}
	var details any
	if r.Details != "" {
		details = r.Details
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (run_id, seq, path, plugin_id, test, status, details)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, r.Seq, r.Path, pluginID, r.Test, r.Status, details)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// FinishRun stores the final tally on the run row.
func (s *Store) FinishRun(ctx context.Context, runID string, passed, failed, skipped, warnings int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET passed = ?, failed = ?, skipped = ?, warnings = ? WHERE id = ?
	`, passed, failed, skipped, warnings, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Runs lists recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, passed, failed, skipped, warnings
		FROM runs ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		if err := rows.Scan(&r.ID, &startedAt, &r.Passed, &r.Failed, &r.Skipped, &r.Warnings); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			r.StartedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Results lists one run's results in emission order.
func (s *Store) Results(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, path, COALESCE(plugin_id, ''), test, status, COALESCE(details, '')
		FROM results WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.RunID, &r.Seq, &r.Path, &r.PluginID, &r.Test, &r.Status, &r.Details); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
