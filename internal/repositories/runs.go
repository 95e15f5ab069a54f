package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/shared"
)

// RunRepository records digging sessions.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Start inserts a run with a generated ID.
func (r *RunRepository) Start(source string, totalTracks int) (*models.Run, error) {
	run := &models.Run{
		ID:          shared.GenerateID(),
		Source:      source,
		TotalTracks: totalTracks,
		StartedAt:   time.Now().UTC(),
	}

	_, err := r.db.Exec(`
		INSERT INTO runs (id, source, total_tracks, failed_tracks, started_at)
		VALUES (?, ?, ?, 0, ?)
	`, run.ID, run.Source, run.TotalTracks, run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// Finish marks a run as completed with its final counts.
func (r *RunRepository) Finish(run *models.Run, summary *models.Summary) error {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		UPDATE runs
		SET total_tracks = ?, failed_tracks = ?, finished_at = ?
		WHERE id = ?
	`, summary.Total, len(summary.Failures), now, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", run.ID)
	}

	run.TotalTracks = summary.Total
	run.FailedTracks = len(summary.Failures)
	run.FinishedAt = &now
	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.Run, error) {
	row := r.db.QueryRow(`
		SELECT id, source, total_tracks, failed_tracks, started_at, finished_at
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first, at most limit when limit > 0.
func (r *RunRepository) List(limit int) ([]*models.Run, error) {
	query := `
		SELECT id, source, total_tracks, failed_tracks, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

func scanRun(s scanner) (*models.Run, error) {
	var (
		run      models.Run
		finished sql.NullTime
	)
	if err := s.Scan(&run.ID, &run.Source, &run.TotalTracks, &run.FailedTracks, &run.StartedAt, &finished); err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}
