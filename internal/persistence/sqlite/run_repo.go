// Package sqlite implements the run-history repository on an embedded
// SQLite database via the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/sawpanic/drawrun/internal/persistence"
)

func init() {
	// The modernc driver registers as "sqlite"; sqlx needs to know it
	// takes ?-style placeholders.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	created_at   TIMESTAMP NOT NULL,
	series_count INTEGER NOT NULL,
	seed_count   INTEGER NOT NULL,
	failed_seeds INTEGER NOT NULL,
	top_score    REAL NOT NULL,
	elapsed_ms   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_candidates (
	run_id  TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	numbers TEXT NOT NULL,
	score   REAL NOT NULL,
	seed    INTEGER NOT NULL,
	refined INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// runRepo implements persistence.RunRepo over SQLite.
type runRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewRunRepo opens (and migrates) the database at path.
func NewRunRepo(path string, timeout time.Duration) (persistence.RunRepo, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply run schema: %w", err)
	}

	return &runRepo{db: db, timeout: timeout}, nil
}

// SaveRun persists a run and its candidates in one transaction.
func (r *runRepo) SaveRun(ctx context.Context, run persistence.RunRecord, candidates []persistence.CandidateRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO runs (run_id, created_at, series_count, seed_count, failed_seeds, top_score, elapsed_ms)
		VALUES (:run_id, :created_at, :series_count, :seed_count, :failed_seeds, :top_score, :elapsed_ms)`,
		run); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, c := range candidates {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO run_candidates (run_id, position, numbers, score, seed, refined)
			VALUES (:run_id, :position, :numbers, :score, :seed, :refined)`,
			c); err != nil {
			return fmt.Errorf("failed to insert candidate rank %d: %w", c.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun fetches one run with its ranked candidates.
func (r *runRepo) GetRun(ctx context.Context, runID string) (*persistence.RunRecord, []persistence.CandidateRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var run persistence.RunRecord
	err := r.db.GetContext(ctx, &run, `SELECT * FROM runs WHERE run_id = ?`, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load run: %w", err)
	}

	var candidates []persistence.CandidateRecord
	if err := r.db.SelectContext(ctx, &candidates,
		`SELECT * FROM run_candidates WHERE run_id = ? ORDER BY position`, runID); err != nil {
		return nil, nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	return &run, candidates, nil
}

// ListRuns returns up to limit runs, newest first.
func (r *runRepo) ListRuns(ctx context.Context, limit int) ([]persistence.RunRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	var runs []persistence.RunRecord
	if err := r.db.SelectContext(ctx, &runs,
		`SELECT * FROM runs ORDER BY created_at DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Close shuts the database down.
func (r *runRepo) Close() error {
	return r.db.Close()
}
