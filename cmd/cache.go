package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/repositories"
	"github.com/desertthunder/scdig/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheStats prints how many tracks, links and runs the cache holds.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := repositories.NewTrackResultRepository(db).Stats()
	if err != nil {
		return err
	}

	r.writePlainHeader("Cache statistics")
	r.writePlain("Database: %s\n", r.config.Cache.Path)
	r.writePlain("Tracks:   %d\n", stats.Tracks)
	r.writePlain("Links:    %d\n", stats.Links)
	r.writePlain("Runs:     %d\n", stats.Runs)
	if stats.LastFetched != nil {
		r.writePlain("Updated:  %s\n", stats.LastFetched.Local().Format(time.DateTime))
	}
	for _, c := range models.Categories() {
		if n := stats.ByCategory[c]; n > 0 {
			r.writePlain("  %-20s %d\n", c, n)
		}
	}
	return nil
}

type cachedTrackJSON struct {
	URL       string            `json:"track_url"`
	Title     string            `json:"title"`
	RunID     string            `json:"run_id,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
	Links     map[string]string `json:"links"`
}

// CacheList prints cached tracks with their links.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	criteria := map[string]any{"limit": cmd.Int("limit")}
	if category := cmd.String("category"); category != "" {
		c, err := models.ParseCategory(category)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		criteria["category"] = c.String()
	}

	db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	tracks, err := repositories.NewTrackResultRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]cachedTrackJSON, 0, len(tracks))
		for _, t := range tracks {
			links := make(map[string]string, len(t.Result.Links))
			for _, l := range t.Result.Links {
				links[l.URL] = l.Category.String()
			}
			out = append(out, cachedTrackJSON{
				URL:       t.Result.Track.URL,
				Title:     t.Result.Track.Title,
				RunID:     t.RunID,
				FetchedAt: t.FetchedAt,
				Links:     links,
			})
		}
		return r.writeJSON(out, true)
	}

	if len(tracks) == 0 {
		return r.writePlain("No cached tracks\n")
	}
	for _, t := range tracks {
		r.writePlain("%s\n  %s\n", t.Result.Track.DisplayTitle(), t.Result.Track.URL)
		for _, l := range t.Result.Links {
			r.writePlain("    [%s] %s\n", l.Category, l.URL)
		}
	}
	return nil
}

// CacheClear removes every cached track.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := repositories.NewTrackResultRepository(db).Clear()
	if err != nil {
		return err
	}
	r.logger.Info("cache cleared", "tracks", n)
	return r.writePlain("✓ Removed %d cached tracks\n", n)
}

// CacheRuns prints recorded runs, most recent first.
func (r *Runner) CacheRuns(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return r.writePlain("No runs recorded\n")
	}

	for _, run := range runs {
		status := "interrupted"
		if run.Finished() {
			status = fmt.Sprintf("%d tracks, %d failed", run.TotalTracks, run.FailedTracks)
		}
		r.writePlain("%s  %s  %s (%s)\n", run.ID[:8], run.StartedAt.Local().Format(time.DateTime), run.Source, status)
	}
	return nil
}
