package models

import "time"

// Run is a persisted record of one digging session.
type Run struct {
	ID           string
	Source       string // Playlist file the tracks came from
	TotalTracks  int
	FailedTracks int
	StartedAt    time.Time
	FinishedAt   *time.Time // nil while the run is in progress or when it was interrupted
}

// Finished reports whether the run completed.
func (r *Run) Finished() bool {
	return r.FinishedAt != nil
}

// CachedTrack is a cached [TrackResult] with its bookkeeping.
type CachedTrack struct {
	Result    TrackResult
	RunID     string
	FetchedAt time.Time
}
