// Package state provides SQLite-based run history for lazyagent.
// Each Run row records one scheduling pass over a project; task_results
// rows record per-task outcomes within that run.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps an SQLite database connection with run-history operations.
type DB struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// Run records one scheduling pass over a project.
type Run struct {
	ID             string
	Project        string
	StartedAt      time.Time
	FinishedAt     *time.Time
	TasksTotal     int
	TasksCompleted int
	Status         string
}

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// TaskResult records one task outcome within a run.
type TaskResult struct {
	RunID      string
	TaskID     string
	OK         bool
	Detail     string
	FinishedAt time.Time
}

// DefaultPath returns the path to the history database.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "lazyagent", "history.db")
}

// Open opens an SQLite database at the given path, creating parent
// directories as needed. WAL mode is enabled for concurrent reads.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

// Migrate creates the schema if it does not exist.
func (db *DB) Migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	project TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	tasks_total INTEGER NOT NULL DEFAULT 0,
	tasks_completed INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'running'
);
CREATE TABLE IF NOT EXISTS task_results (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	task_id TEXT NOT NULL,
	ok INTEGER NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	finished_at TIMESTAMP NOT NULL,
	PRIMARY KEY (run_id, task_id)
);
CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project, started_at);
`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// RecordRunStart inserts a new running run.
func (db *DB) RecordRunStart(r *Run) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(
		`INSERT INTO runs (id, project, started_at, tasks_total, tasks_completed, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Project, r.StartedAt, r.TasksTotal, r.TasksCompleted, RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// FinishRun marks a run finished with the given status and final counts.
func (db *DB) FinishRun(runID, status string, tasksCompleted int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	res, err := db.conn.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, tasks_completed = ? WHERE id = ?`,
		time.Now().UTC(), status, tasksCompleted, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: no such run", runID)
	}
	return nil
}

// RecordTaskResult inserts one task outcome for a run.
func (db *DB) RecordTaskResult(tr *TaskResult) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	ok := 0
	if tr.OK {
		ok = 1
	}
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO task_results (run_id, task_id, ok, detail, finished_at)
		 VALUES (?, ?, ?, ?, ?)`,
		tr.RunID, tr.TaskID, ok, tr.Detail, tr.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("record task result %s/%s: %w", tr.RunID, tr.TaskID, err)
	}
	return nil
}

// RecentRuns returns the most recent runs for a project, newest first.
func (db *DB) RecentRuns(project string, limit int) ([]Run, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(
		`SELECT id, project, started_at, finished_at, tasks_total, tasks_completed, status
		 FROM runs WHERE project = ? ORDER BY started_at DESC LIMIT ?`,
		project, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs for %s: %w", project, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Project, &r.StartedAt, &finished, &r.TasksTotal, &r.TasksCompleted, &r.Status); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// TaskResults returns the task outcomes for a run in task id order.
func (db *DB) TaskResults(runID string) ([]TaskResult, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(
		`SELECT run_id, task_id, ok, detail, finished_at
		 FROM task_results WHERE run_id = ? ORDER BY task_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query task results for %s: %w", runID, err)
	}
	defer rows.Close()

	var results []TaskResult
	for rows.Next() {
		var tr TaskResult
		var ok int
		if err := rows.Scan(&tr.RunID, &tr.TaskID, &ok, &tr.Detail, &tr.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan task result: %w", err)
		}
		tr.OK = ok != 0
		results = append(results, tr)
	}
	return results, rows.Err()
}
