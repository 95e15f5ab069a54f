package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/shared"
)

// TrackResultRepository persists successfully processed tracks and their links.
//
// Only ok results are stored; a track is replaced wholesale when saved again.
type TrackResultRepository struct {
	db *sql.DB
}

// CacheStats summarizes the cache contents.
type CacheStats struct {
	Tracks      int
	Links       int
	Runs        int
	ByCategory  map[models.Category]int
	LastFetched *time.Time
}

// NewTrackResultRepository creates a new TrackResultRepository with the given database connection
func NewTrackResultRepository(db *sql.DB) *TrackResultRepository {
	return &TrackResultRepository{db: db}
}

// Save stores result under its track URL, replacing any previous entry.
func (r *TrackResultRepository) Save(result models.TrackResult, runID string) error {
	if result.Failed() {
		return fmt.Errorf("%w: only successful results are cached (status %s)", shared.ErrInvalidInput, result.Status)
	}
	if result.Track.URL == "" {
		return fmt.Errorf("%w: track URL is required", shared.ErrInvalidInput)
	}

	return withTx(r.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO track_results (track_url, title, run_id, fetched_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(track_url) DO UPDATE SET title = excluded.title, run_id = excluded.run_id, fetched_at = excluded.fetched_at
		`, result.Track.URL, result.Track.Title, nullString(runID), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to save track result: %w", err)
		}

		if _, err := tx.Exec(`DELETE FROM track_links WHERE track_url = ?`, result.Track.URL); err != nil {
			return fmt.Errorf("failed to replace track links: %w", err)
		}

		for i, link := range result.Links {
			_, err := tx.Exec(`
				INSERT INTO track_links (track_url, position, url, category)
				VALUES (?, ?, ?, ?)
			`, result.Track.URL, i, link.URL, link.Category.String())
			if err != nil {
				return fmt.Errorf("failed to save track link: %w", err)
			}
		}
		return nil
	})
}

// Get retrieves the cached result for trackURL, or [shared.ErrCacheMiss].
func (r *TrackResultRepository) Get(trackURL string) (*models.CachedTrack, error) {
	query := `
		SELECT track_url, title, run_id, fetched_at
		FROM track_results
		WHERE track_url = ?
	`

	cached, err := r.scanOne(r.db.QueryRow(query, trackURL))
	if err != nil {
		return nil, err
	}

	links, err := r.links(trackURL)
	if err != nil {
		return nil, err
	}
	cached.Result.Links = links
	return cached, nil
}

// List retrieves cached tracks, most recent first.
//
// Supported criteria: "category" (string) keeps tracks with at least one link
// in that category, "limit" (int) bounds the result count.
func (r *TrackResultRepository) List(criteria map[string]any) ([]*models.CachedTrack, error) {
	query := `
		SELECT track_url, title, run_id, fetched_at
		FROM track_results
		WHERE 1 = 1
	`
	args := []any{}

	if category, ok := criteria["category"].(string); ok && category != "" {
		query += " AND track_url IN (SELECT track_url FROM track_links WHERE category = ?)"
		args = append(args, category)
	}

	query += " ORDER BY fetched_at DESC, track_url ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track results: %w", err)
	}
	defer rows.Close()

	var tracks []*models.CachedTrack
	for rows.Next() {
		cached, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, cached)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating track results: %w", err)
	}
	rows.Close()

	for _, cached := range tracks {
		links, err := r.links(cached.Result.Track.URL)
		if err != nil {
			return nil, err
		}
		cached.Result.Links = links
	}
	return tracks, nil
}

// Delete removes one cached track and its links.
func (r *TrackResultRepository) Delete(trackURL string) error {
	result, err := r.db.Exec(`DELETE FROM track_results WHERE track_url = ?`, trackURL)
	if err != nil {
		return fmt.Errorf("failed to delete track result: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrCacheMiss, trackURL)
	}
	return nil
}

// Clear removes every cached track and returns how many were removed.
func (r *TrackResultRepository) Clear() (int64, error) {
	var removed int64
	err := withTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM track_links`); err != nil {
			return fmt.Errorf("failed to clear track links: %w", err)
		}
		result, err := tx.Exec(`DELETE FROM track_results`)
		if err != nil {
			return fmt.Errorf("failed to clear track results: %w", err)
		}
		removed, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		return nil
	})
	return removed, err
}

// Stats counts cached tracks, links per category and recorded runs.
func (r *TrackResultRepository) Stats() (*CacheStats, error) {
	stats := &CacheStats{ByCategory: make(map[models.Category]int)}

	var last sql.NullString
	err := r.db.QueryRow(`SELECT COUNT(*), MAX(fetched_at) FROM track_results`).Scan(&stats.Tracks, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to count track results: %w", err)
	}
	if last.Valid {
		if t, err := parseTimestamp(last.String); err == nil {
			stats.LastFetched = &t
		}
	}

	if err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&stats.Runs); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	rows, err := r.db.Query(`SELECT category, COUNT(*) FROM track_links GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to count track links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan link count: %w", err)
		}
		category, err := models.ParseCategory(name)
		if err != nil {
			category = models.Others
		}
		stats.ByCategory[category] += count
		stats.Links += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating link counts: %w", err)
	}
	return stats, nil
}

func (r *TrackResultRepository) links(trackURL string) ([]models.ClassifiedLink, error) {
	rows, err := r.db.Query(`
		SELECT url, category
		FROM track_links
		WHERE track_url = ?
		ORDER BY position ASC
	`, trackURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query track links: %w", err)
	}
	defer rows.Close()

	links := []models.ClassifiedLink{}
	for rows.Next() {
		var url, name string
		if err := rows.Scan(&url, &name); err != nil {
			return nil, fmt.Errorf("failed to scan track link: %w", err)
		}
		category, err := models.ParseCategory(name)
		if err != nil {
			category = models.Others
		}
		links = append(links, models.ClassifiedLink{URL: url, Category: category})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating track links: %w", err)
	}
	return links, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *TrackResultRepository) scan(s scanner) (*models.CachedTrack, error) {
	var (
		trackURL, title string
		runID           sql.NullString
		fetchedAt       time.Time
	)
	if err := s.Scan(&trackURL, &title, &runID, &fetchedAt); err != nil {
		return nil, err
	}

	return &models.CachedTrack{
		Result: models.TrackResult{
			Track:  models.TrackRef{URL: trackURL, Title: title},
			Links:  []models.ClassifiedLink{},
			Status: models.StatusOK,
		},
		RunID:     runID.String,
		FetchedAt: fetchedAt,
	}, nil
}

func (r *TrackResultRepository) scanOne(row *sql.Row) (*models.CachedTrack, error) {
	cached, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track result: %w", err)
	}
	return cached, nil
}

func (r *TrackResultRepository) scanRow(rows *sql.Rows) (*models.CachedTrack, error) {
	cached, err := r.scan(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan track result: %w", err)
	}
	return cached, nil
}

// parseTimestamp reads the text form go-sqlite3 uses for aggregated TIMESTAMP values.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
