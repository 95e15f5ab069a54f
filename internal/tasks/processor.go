package tasks

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scdig/internal/links"
	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/services"
	"github.com/desertthunder/scdig/internal/shared"
)

// PageFetcher retrieves the HTML of a track page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// TrackCacher persists processed tracks between runs.
//
// CachedResult returns [shared.ErrCacheMiss] for unknown tracks.
type TrackCacher interface {
	CachedResult(trackURL string) (*models.TrackResult, error)
	CacheResult(result models.TrackResult) error
}

// TrackProcessor turns one track into a [models.TrackResult]: fetch the page,
// extract candidate links and classify them.
type TrackProcessor struct {
	fetcher PageFetcher
	logger  *log.Logger
	cache   TrackCacher
}

// NewTrackProcessor creates a processor backed by fetcher.
func NewTrackProcessor(fetcher PageFetcher, logger *log.Logger) *TrackProcessor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &TrackProcessor{fetcher: fetcher, logger: logger}
}

// SetCache enables result caching. Cache errors are logged and never fail a track.
func (p *TrackProcessor) SetCache(c TrackCacher) {
	p.cache = c
}

// Process handles a single track. Failures are reported in the result, never returned.
func (p *TrackProcessor) Process(ctx context.Context, track models.TrackRef) models.TrackResult {
	logger := p.logger.With("track", track.URL)

	if cached, ok := p.lookup(logger, track); ok {
		return cached
	}

	body, err := p.fetcher.Fetch(ctx, track.URL)
	if err != nil {
		kind := models.NetworkPermanent
		var ferr *services.FetchError
		if errors.As(err, &ferr) {
			kind = ferr.Kind
		}
		logger.Warn("track page fetch failed", "kind", kind, "err", err)
		return models.TrackResult{Track: track, Links: []models.ClassifiedLink{}, Status: models.StatusFetchFailed, Kind: kind, Err: err}
	}

	page, err := links.ParsePage(body, track.URL)
	if err != nil {
		logger.Warn("track page could not be parsed", "err", err)
		return models.TrackResult{Track: track, Links: []models.ClassifiedLink{}, Status: models.StatusParseFailed, Kind: models.ParseError, Err: err}
	}

	if track.Title == "" {
		track = models.TrackRef{URL: track.URL, Title: page.Title()}
	}

	result := models.TrackResult{Track: track, Links: classify(logger, page.Links()), Status: models.StatusOK}
	logger.Debug("track processed", "links", len(result.Links))

	p.store(logger, result)
	return result
}

// classify tags each candidate, keeping the first occurrence of every URL.
func classify(logger *log.Logger, candidates []string) []models.ClassifiedLink {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]models.ClassifiedLink, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		category := links.Classify(c)
		logger.Debug("classified link", "url", c, "category", category)
		out = append(out, models.ClassifiedLink{URL: c, Category: category})
	}
	return out
}

func (p *TrackProcessor) lookup(logger *log.Logger, track models.TrackRef) (models.TrackResult, bool) {
	if p.cache == nil {
		return models.TrackResult{}, false
	}

	cached, err := p.cache.CachedResult(track.URL)
	if err != nil {
		if !errors.Is(err, shared.ErrCacheMiss) {
			logger.Warn("cache lookup failed", "err", err)
		}
		return models.TrackResult{}, false
	}
	if cached == nil {
		return models.TrackResult{}, false
	}

	result := *cached
	if track.Title != "" {
		result.Track = track
	}
	logger.Debug("using cached track result", "links", len(result.Links))
	return result, true
}

func (p *TrackProcessor) store(logger *log.Logger, result models.TrackResult) {
	if p.cache == nil {
		return
	}
	if err := p.cache.CacheResult(result); err != nil {
		logger.Warn("failed to cache track result", "err", err)
	}
}
