package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func okResult(url, title string, links ...models.ClassifiedLink) models.TrackResult {
	if links == nil {
		links = []models.ClassifiedLink{}
	}
	return models.TrackResult{Track: models.TrackRef{URL: url, Title: title}, Links: links, Status: models.StatusOK}
}

var (
	bandcampLink = models.ClassifiedLink{URL: "https://a.bandcamp.com/track/x", Category: models.Bandcamp}
	otherLink    = models.ClassifiedLink{URL: "https://example.com/x", Category: models.Others}
	beatportLink = models.ClassifiedLink{URL: "https://www.beatport.com/track/x/1", Category: models.Beatport}
)

func TestTrackResultRepository(t *testing.T) {
	t.Run("Save And Get", func(t *testing.T) {
		repo := NewTrackResultRepository(setupTestDB(t))

		in := okResult("https://soundcloud.com/a/x", "X", bandcampLink, otherLink)
		if err := repo.Save(in, "run-1"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := repo.Get(in.Track.URL)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Result.Track != in.Track || got.RunID != "run-1" || got.FetchedAt.IsZero() {
			t.Errorf("unexpected cached track %+v", got)
		}
		if len(got.Result.Links) != 2 || got.Result.Links[0] != bandcampLink || got.Result.Links[1] != otherLink {
			t.Errorf("links not preserved in order: %+v", got.Result.Links)
		}
		if got.Result.Status != models.StatusOK {
			t.Errorf("expected ok status, got %v", got.Result.Status)
		}
	})

	t.Run("Save Replaces Links", func(t *testing.T) {
		repo := NewTrackResultRepository(setupTestDB(t))
		url := "https://soundcloud.com/a/x"

		if err := repo.Save(okResult(url, "X", bandcampLink, otherLink), ""); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := repo.Save(okResult(url, "X2", beatportLink), ""); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := repo.Get(url)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Result.Track.Title != "X2" || len(got.Result.Links) != 1 || got.Result.Links[0] != beatportLink {
			t.Errorf("unexpected replaced result %+v", got.Result)
		}
		if got.RunID != "" {
			t.Errorf("expected empty run id, got %q", got.RunID)
		}
	})

	t.Run("Miss", func(t *testing.T) {
		repo := NewTrackResultRepository(setupTestDB(t))
		if _, err := repo.Get("https://soundcloud.com/a/missing"); !errors.Is(err, shared.ErrCacheMiss) {
			t.Errorf("expected ErrCacheMiss, got %v", err)
		}
	})

	t.Run("Rejects Failed Results", func(t *testing.T) {
		repo := NewTrackResultRepository(setupTestDB(t))
		failed := models.TrackResult{Track: models.TrackRef{URL: "https://soundcloud.com/a/x"}, Status: models.StatusFetchFailed}
		if err := repo.Save(failed, ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if err := repo.Save(okResult("", ""), ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty URL, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewTrackResultRepository(setupTestDB(t))
		for _, r := range []models.TrackResult{
			okResult("https://soundcloud.com/a/1", "1", bandcampLink),
			okResult("https://soundcloud.com/a/2", "2", beatportLink),
			okResult("https://soundcloud.com/a/3", "3"),
		} {
			if err := repo.Save(r, ""); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 tracks, got %d", len(all))
		}

		byCategory, err := repo.List(map[string]any{"category": "beatport"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(byCategory) != 1 || byCategory[0].Result.Track.URL != "https://soundcloud.com/a/2" {
			t.Errorf("unexpected category filter result %+v", byCategory)
		}
		if len(byCategory[0].Result.Links) != 1 {
			t.Errorf("expected links to be loaded, got %+v", byCategory[0].Result.Links)
		}

		limited, err := repo.List(map[string]any{"limit": 2})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(limited))
		}
	})

	t.Run("Delete And Clear", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackResultRepository(db)
		for _, url := range []string{"https://soundcloud.com/a/1", "https://soundcloud.com/a/2"} {
			if err := repo.Save(okResult(url, "", bandcampLink), ""); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}

		if err := repo.Delete("https://soundcloud.com/a/1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := repo.Delete("https://soundcloud.com/a/1"); !errors.Is(err, shared.ErrCacheMiss) {
			t.Errorf("expected ErrCacheMiss on second delete, got %v", err)
		}

		var orphans int
		if err := db.QueryRow(`SELECT COUNT(*) FROM track_links WHERE track_url = ?`, "https://soundcloud.com/a/1").Scan(&orphans); err != nil {
			t.Fatal(err)
		}
		if orphans != 0 {
			t.Errorf("expected links to cascade, found %d", orphans)
		}

		removed, err := repo.Clear()
		if err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 removed, got %d", removed)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackResultRepository(db)
		if err := repo.Save(okResult("https://soundcloud.com/a/1", "", bandcampLink, otherLink), ""); err != nil {
			t.Fatal(err)
		}
		if err := repo.Save(okResult("https://soundcloud.com/a/2", "", bandcampLink), ""); err != nil {
			t.Fatal(err)
		}
		if _, err := NewRunRepository(db).Start("playlist.html", 2); err != nil {
			t.Fatal(err)
		}

		stats, err := repo.Stats()
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.Tracks != 2 || stats.Links != 3 || stats.Runs != 1 {
			t.Errorf("unexpected stats %+v", stats)
		}
		if stats.ByCategory[models.Bandcamp] != 2 || stats.ByCategory[models.Others] != 1 {
			t.Errorf("unexpected category counts %+v", stats.ByCategory)
		}
		if stats.LastFetched == nil {
			t.Error("expected last fetched time")
		}
	})

	t.Run("Empty Stats", func(t *testing.T) {
		stats, err := NewTrackResultRepository(setupTestDB(t)).Stats()
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.Tracks != 0 || stats.LastFetched != nil {
			t.Errorf("unexpected stats %+v", stats)
		}
	})
}

func TestRunRepository(t *testing.T) {
	t.Run("Start And Finish", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))

		run, err := repo.Start("playlist.html", 3)
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if run.ID == "" || run.Finished() {
			t.Errorf("unexpected new run %+v", run)
		}

		summary := models.NewSummary()
		summary.Total = 2
		summary.Failures = []models.Failure{{Track: models.TrackRef{URL: "https://soundcloud.com/a/x"}}}
		if err := repo.Finish(run, summary); err != nil {
			t.Fatalf("Finish() error = %v", err)
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Source != "playlist.html" || got.TotalTracks != 2 || got.FailedTracks != 1 || !got.Finished() {
			t.Errorf("unexpected stored run %+v", got)
		}
	})

	t.Run("Finish Unknown Run", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		if err := repo.Finish(&models.Run{ID: "missing"}, models.NewSummary()); err == nil {
			t.Error("expected error for unknown run")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		for _, src := range []string{"a.html", "b.html", "c.html"} {
			if _, err := repo.Start(src, 1); err != nil {
				t.Fatal(err)
			}
		}

		runs, err := repo.List(2)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
		if _, err := repo.Get("missing"); err == nil {
			t.Error("expected error for unknown run")
		}
	})
}

func TestTrackCacheAdapter(t *testing.T) {
	repo := NewTrackResultRepository(setupTestDB(t))
	cache := NewTrackCacheAdapter(repo, "run-9")
	url := "https://soundcloud.com/a/x"

	if _, err := cache.CachedResult(url); !errors.Is(err, shared.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	failed := models.TrackResult{Track: models.TrackRef{URL: url}, Status: models.StatusParseFailed}
	if err := cache.CacheResult(failed); err != nil {
		t.Errorf("failed results should be skipped silently, got %v", err)
	}
	if _, err := cache.CachedResult(url); !errors.Is(err, shared.ErrCacheMiss) {
		t.Error("failed result must not be cached")
	}

	if err := cache.CacheResult(okResult(url, "X", bandcampLink)); err != nil {
		t.Fatalf("CacheResult() error = %v", err)
	}
	got, err := cache.CachedResult(url)
	if err != nil {
		t.Fatalf("CachedResult() error = %v", err)
	}
	if got.Track.Title != "X" || len(got.Links) != 1 {
		t.Errorf("unexpected cached result %+v", got)
	}

	stored, _ := repo.Get(url)
	if stored.RunID != "run-9" {
		t.Errorf("expected run id run-9, got %q", stored.RunID)
	}
}
