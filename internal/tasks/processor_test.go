package tasks

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/services"
	"github.com/desertthunder/scdig/internal/shared"
	tu "github.com/desertthunder/scdig/internal/testing"
)

const (
	trackOne   = "https://soundcloud.com/artist/one"
	trackTwo   = "https://soundcloud.com/artist/two"
	trackThree = "https://soundcloud.com/artist/three"
)

const storePage = `<html><head><title>One | SoundCloud</title></head><body>
<a href="https://artist.bandcamp.com/album/x">Buy</a>
<a href="https://example.com/other">Other</a>
<a href="https://artist.bandcamp.com/album/x">Buy again</a>
</body></html>`

const relativePage = `<html><body><a href="/artist/one/download">Free download</a><a href="/discover">Discover</a></body></html>`

const plainPage = `<html><head><title>Two</title></head><body><a href="/artist">artist</a></body></html>`

// mockCache is an in-memory [TrackCacher].
type mockCache struct {
	results  map[string]models.TrackResult
	stored   []models.TrackResult
	storeErr error
	readErr  error
}

func newMockCache() *mockCache {
	return &mockCache{results: map[string]models.TrackResult{}}
}

func (c *mockCache) CachedResult(trackURL string) (*models.TrackResult, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	r, ok := c.results[trackURL]
	if !ok {
		return nil, shared.ErrCacheMiss
	}
	return &r, nil
}

func (c *mockCache) CacheResult(result models.TrackResult) error {
	if c.storeErr != nil {
		return c.storeErr
	}
	c.stored = append(c.stored, result)
	return nil
}

func TestTrackProcessor(t *testing.T) {
	t.Run("Classifies And Deduplicates Links", func(t *testing.T) {
		f := tu.NewMockFetcher()
		f.Pages[trackOne] = storePage

		got := NewTrackProcessor(f, nil).Process(context.Background(), models.TrackRef{URL: trackOne, Title: "One"})

		if got.Status != models.StatusOK || got.Err != nil {
			t.Fatalf("expected ok result, got %v (%v)", got.Status, got.Err)
		}
		want := []models.ClassifiedLink{
			{URL: "https://artist.bandcamp.com/album/x", Category: models.Bandcamp},
			{URL: "https://example.com/other", Category: models.Others},
		}
		if len(got.Links) != len(want) {
			t.Fatalf("expected %d links, got %v", len(want), got.Links)
		}
		for i := range want {
			if got.Links[i] != want[i] {
				t.Errorf("link %d = %+v, want %+v", i, got.Links[i], want[i])
			}
		}
	})

	t.Run("Derives Missing Title From Page", func(t *testing.T) {
		f := tu.NewMockFetcher()
		f.Pages[trackOne] = storePage

		got := NewTrackProcessor(f, nil).Process(context.Background(), models.TrackRef{URL: trackOne})
		if got.Track.Title != "One" {
			t.Errorf("expected title One, got %q", got.Track.Title)
		}
	})

	t.Run("Zero Links Is Not A Failure", func(t *testing.T) {
		f := tu.NewMockFetcher()
		f.Pages[trackTwo] = plainPage

		got := NewTrackProcessor(f, nil).Process(context.Background(), models.TrackRef{URL: trackTwo})
		if got.Failed() || len(got.Links) != 0 {
			t.Errorf("expected ok result without links, got %+v", got)
		}
	})

	t.Run("Fetch Failure", func(t *testing.T) {
		f := tu.NewMockFetcher()
		f.Errors[trackOne] = &services.FetchError{URL: trackOne, StatusCode: 503, Retries: 5, Kind: models.NetworkTransient}

		got := NewTrackProcessor(f, nil).Process(context.Background(), models.TrackRef{URL: trackOne})
		if got.Status != models.StatusFetchFailed || got.Kind != models.NetworkTransient {
			t.Errorf("expected transient fetch failure, got %v/%v", got.Status, got.Kind)
		}
		if !errors.Is(got.Err, shared.ErrFetchFailed) {
			t.Errorf("expected ErrFetchFailed, got %v", got.Err)
		}
		if got.Links == nil || len(got.Links) != 0 {
			t.Errorf("expected empty links, got %v", got.Links)
		}
	})

	t.Run("Unknown Fetch Error Is Permanent", func(t *testing.T) {
		got := NewTrackProcessor(tu.NewMockFetcher(), nil).Process(context.Background(), models.TrackRef{URL: trackOne})
		if got.Status != models.StatusFetchFailed || got.Kind != models.NetworkPermanent {
			t.Errorf("expected permanent fetch failure, got %v/%v", got.Status, got.Kind)
		}
	})

	t.Run("Parse Failure", func(t *testing.T) {
		f := tu.NewMockFetcher()
		f.Pages[trackOne] = "   "

		got := NewTrackProcessor(f, nil).Process(context.Background(), models.TrackRef{URL: trackOne})
		if got.Status != models.StatusParseFailed || got.Kind != models.ParseError {
			t.Errorf("expected parse failure, got %v/%v", got.Status, got.Kind)
		}
		if !errors.Is(got.Err, shared.ErrParse) {
			t.Errorf("expected ErrParse, got %v", got.Err)
		}
		if calls := f.Calls(); len(calls) != 1 {
			t.Errorf("parse failures must not be retried, got %d fetches", len(calls))
		}
	})

	t.Run("Cache Hit Skips Fetch", func(t *testing.T) {
		f := tu.NewMockFetcher()
		cache := newMockCache()
		cache.results[trackOne] = models.TrackResult{
			Track:  models.TrackRef{URL: trackOne, Title: "Cached"},
			Links:  []models.ClassifiedLink{{URL: "https://www.beatport.com/track/x/1", Category: models.Beatport}},
			Status: models.StatusOK,
		}

		p := NewTrackProcessor(f, nil)
		p.SetCache(cache)
		got := p.Process(context.Background(), models.TrackRef{URL: trackOne})

		if len(f.Calls()) != 0 {
			t.Errorf("expected no fetches, got %v", f.Calls())
		}
		if got.Track.Title != "Cached" || len(got.Links) != 1 || got.Links[0].Category != models.Beatport {
			t.Errorf("unexpected cached result %+v", got)
		}
	})

	t.Run("Stores Successful Results", func(t *testing.T) {
		f := tu.NewMockFetcher()
		f.Pages[trackOne] = storePage
		cache := newMockCache()

		p := NewTrackProcessor(f, nil)
		p.SetCache(cache)
		p.Process(context.Background(), models.TrackRef{URL: trackOne})
		p.Process(context.Background(), models.TrackRef{URL: trackTwo})

		if len(cache.stored) != 1 || cache.stored[0].Track.URL != trackOne {
			t.Errorf("expected only the ok result to be cached, got %+v", cache.stored)
		}
	})

	t.Run("Resolves Relative Links Against Track URL", func(t *testing.T) {
		f := tu.NewMockFetcher()
		f.Pages[trackOne] = relativePage

		got := NewTrackProcessor(f, nil).Process(context.Background(), models.TrackRef{URL: trackOne})
		want := models.ClassifiedLink{URL: trackOne + "/download", Category: models.SoundCloudDownload}
		if len(got.Links) != 1 || got.Links[0] != want {
			t.Errorf("expected %+v, got %+v", want, got.Links)
		}
	})

	t.Run("Cache Lookup Logging", func(t *testing.T) {
		tc := []struct {
			name     string
			readErr  error
			wantWarn bool
		}{
			{name: "read failure is logged", readErr: errors.New("database is locked"), wantWarn: true},
			{name: "miss is silent", readErr: shared.ErrCacheMiss, wantWarn: false},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				var buf bytes.Buffer
				f := tu.NewMockFetcher()
				f.Pages[trackOne] = storePage
				cache := newMockCache()
				cache.readErr = tt.readErr

				p := NewTrackProcessor(f, log.New(&buf))
				p.SetCache(cache)
				got := p.Process(context.Background(), models.TrackRef{URL: trackOne})

				if got.Failed() || len(f.Calls()) != 1 {
					t.Fatalf("expected the track to be fetched and processed, got %+v", got)
				}
				if warned := strings.Contains(buf.String(), "cache lookup failed"); warned != tt.wantWarn {
					t.Errorf("warned = %v, want %v; log: %s", warned, tt.wantWarn, buf.String())
				}
				if tt.wantWarn && !strings.Contains(buf.String(), "database is locked") {
					t.Errorf("expected the cache error in the log, got %s", buf.String())
				}
			})
		}
	})

	t.Run("Cache Errors Are Ignored", func(t *testing.T) {
		f := tu.NewMockFetcher()
		f.Pages[trackOne] = storePage
		cache := newMockCache()
		cache.storeErr = errors.New("disk full")

		p := NewTrackProcessor(f, nil)
		p.SetCache(cache)
		if got := p.Process(context.Background(), models.TrackRef{URL: trackOne}); got.Failed() {
			t.Errorf("cache errors must not fail the track, got %+v", got)
		}
	})
}
