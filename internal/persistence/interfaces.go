// Package persistence defines the run-history storage contract. The engine
// never touches storage directly; the CLI persists completed runs through
// these interfaces so past predictions can be listed and re-reported.
package persistence

import (
	"context"
	"time"
)

// RunRecord is one stored prediction run.
type RunRecord struct {
	RunID       string    `json:"run_id" db:"run_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	SeriesCount int       `json:"series_count" db:"series_count"`
	SeedCount   int       `json:"seed_count" db:"seed_count"`
	FailedSeeds int       `json:"failed_seeds" db:"failed_seeds"`
	TopScore    float64   `json:"top_score" db:"top_score"`
	ElapsedMS   int64     `json:"elapsed_ms" db:"elapsed_ms"`
}

// CandidateRecord is one ranked candidate of a stored run.
type CandidateRecord struct {
	RunID   string  `json:"run_id" db:"run_id"`
	Rank    int     `json:"rank" db:"position"`
	Numbers string  `json:"numbers" db:"numbers"` // JSON-encoded sorted number list
	Score   float64 `json:"score" db:"score"`
	Seed    int64   `json:"seed" db:"seed"`
	Refined bool    `json:"refined" db:"refined"`
}

// RunRepo stores and retrieves prediction runs.
type RunRepo interface {
	// SaveRun persists a run and its ranked candidates atomically.
	SaveRun(ctx context.Context, run RunRecord, candidates []CandidateRecord) error

	// GetRun returns one run and its candidates ordered by rank.
	GetRun(ctx context.Context, runID string) (*RunRecord, []CandidateRecord, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// Close releases the underlying store.
	Close() error
}
