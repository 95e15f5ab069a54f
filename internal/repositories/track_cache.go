package repositories

import (
	"github.com/desertthunder/scdig/internal/models"
)

// TrackCacheAdapter implements tasks.TrackCacher using TrackResultRepository.
//
// Results are tagged with the run that produced them.
type TrackCacheAdapter struct {
	repo  *TrackResultRepository
	runID string
}

// NewTrackCacheAdapter creates a new TrackCacheAdapter with the given repository
func NewTrackCacheAdapter(repo *TrackResultRepository, runID string) *TrackCacheAdapter {
	return &TrackCacheAdapter{repo: repo, runID: runID}
}

// CachedResult returns the stored result for trackURL or [shared.ErrCacheMiss].
func (a *TrackCacheAdapter) CachedResult(trackURL string) (*models.TrackResult, error) {
	cached, err := a.repo.Get(trackURL)
	if err != nil {
		return nil, err
	}
	return &cached.Result, nil
}

// CacheResult stores a successful result. Failed results are skipped.
func (a *TrackCacheAdapter) CacheResult(result models.TrackResult) error {
	if result.Failed() {
		return nil
	}
	return a.repo.Save(result, a.runID)
}
