// Package history persists one record per completed normalization run in
// PostgreSQL. The store is optional: when no database is configured the
// server runs without it and every endpoint except GET /history behaves
// identically.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultRecentLimit is the number of runs returned when no limit is given.
const DefaultRecentLimit = 20

// MaxRecentLimit caps the number of runs a single query may return.
const MaxRecentLimit = 100

// Run is one completed normalization, as stored and as served by
// GET /history.
type Run struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Filename    string    `json:"filename"`
	InputBytes  int64     `json:"input_bytes"`
	OutputBytes int64     `json:"output_bytes"`
	SHA256      string    `json:"sha256"`
	Rows        int       `json:"rows"`
	Columns     int       `json:"columns"`
	Warnings    int       `json:"warnings"`
	Errors      int       `json:"errors"`
	DurationMS  int64     `json:"duration_ms"`
}

// Recorder writes and reads normalization runs.
type Recorder struct {
	pool *pgxpool.Pool
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS normalization_runs (
	id            UUID PRIMARY KEY,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	filename      TEXT NOT NULL,
	input_bytes   BIGINT NOT NULL,
	output_bytes  BIGINT NOT NULL,
	sha256        TEXT NOT NULL,
	row_count     INTEGER NOT NULL,
	column_count  INTEGER NOT NULL,
	warning_count INTEGER NOT NULL,
	error_count   INTEGER NOT NULL,
	duration_ms   BIGINT NOT NULL
)`

// NewRecorder creates a Recorder and bootstraps the runs table.
func NewRecorder(ctx context.Context, pool *pgxpool.Pool) (*Recorder, error) {
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("create normalization_runs table: %w", err)
	}
	return &Recorder{pool: pool}, nil
}

// Record inserts one run. A zero ID or CreatedAt is filled in here so
// callers only have to supply what they measured.
func (r *Recorder) Record(ctx context.Context, run Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO normalization_runs
			(id, created_at, filename, input_bytes, output_bytes, sha256,
			 row_count, column_count, warning_count, error_count, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		run.ID, run.CreatedAt, run.Filename,
		run.InputBytes, run.OutputBytes, run.SHA256,
		run.Rows, run.Columns, run.Warnings, run.Errors, run.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert normalization run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first. The limit is clamped
// to [1, MaxRecentLimit]; zero or negative selects the default.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	const query = `
		SELECT id, created_at, filename, input_bytes, output_bytes, sha256,
		       row_count, column_count, warning_count, error_count, duration_ms
		FROM normalization_runs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query normalization runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.CreatedAt, &run.Filename,
			&run.InputBytes, &run.OutputBytes, &run.SHA256,
			&run.Rows, &run.Columns, &run.Warnings, &run.Errors, &run.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scan normalization run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
