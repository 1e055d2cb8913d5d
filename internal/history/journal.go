// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps an append-only SQLite journal of generation
// outcomes. The journal is an audit trail for the history command; whether
// an input is processed is still decided by looking for its note.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/adn/pkg/types"
)

// Journal records outcomes in a SQLite database.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	j := &Journal{db: db}
	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return j, nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS outcomes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			input TEXT NOT NULL,
			output TEXT,
			status TEXT NOT NULL,
			error TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_status ON outcomes(status)`,
	}
	for _, stmt := range statements {
		if _, err := j.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends an outcome.
func (j *Journal) Record(ctx context.Context, o types.Outcome) error {
	created := o.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, mode, input, output, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.RunID, string(o.Mode), o.Input, o.Output, string(o.Status), o.Error,
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording outcome for %s: %w", o.Input, err)
	}
	return nil
}

// Query filters Recent. Zero fields match everything.
type Query struct {
	Limit  int
	RunID  string
	Mode   types.Mode
	Status types.Status
}

// Recent returns matching outcomes, newest first.
func (j *Journal) Recent(ctx context.Context, q Query) ([]types.Outcome, error) {
	var (
		where []string
		args  []any
	)
	if q.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, q.RunID)
	}
	if q.Mode != "" {
		where = append(where, "mode = ?")
		args = append(args, string(q.Mode))
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	}

	query := `SELECT run_id, mode, input, output, status, error, created_at FROM outcomes`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var out []types.Outcome
	for rows.Next() {
		var (
			o              types.Outcome
			mode, status   string
			output, errMsg sql.NullString
			created        string
		)
		if err := rows.Scan(&o.RunID, &mode, &o.Input, &output, &status, &errMsg, &created); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Mode = types.Mode(mode)
		o.Status = types.Status(status)
		o.Output = output.String
		o.Error = errMsg.String
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			o.CreatedAt = t
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// RunSummary aggregates the outcomes of one run.
type RunSummary struct {
	RunID     string         `json:"run_id" yaml:"run_id"`
	Mode      types.Mode     `json:"mode" yaml:"mode"`
	StartedAt time.Time      `json:"started_at" yaml:"started_at"`
	Counts    map[string]int `json:"counts" yaml:"counts"`
}

// Runs returns per-run status counts, most recent run first.
func (j *Journal) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT run_id, mode, MIN(created_at), MAX(id) AS last FROM outcomes
		GROUP BY run_id, mode ORDER BY last DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	var runs []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			mode    string
			started string
			last    int64
		)
		if err := rows.Scan(&r.RunID, &mode, &started, &last); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Mode = types.Mode(mode)
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			r.StartedAt = t
		}
		runs = append(runs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		counts, err := j.statusCounts(ctx, runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].Counts = counts
	}
	return runs, nil
}

func (j *Journal) statusCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM outcomes WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return nil, fmt.Errorf("counting run %s: %w", runID, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Prune deletes outcomes recorded before cutoff and returns how many were
// removed.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx,
		`DELETE FROM outcomes WHERE created_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("pruning outcomes: %w", err)
	}
	return res.RowsAffected()
}
