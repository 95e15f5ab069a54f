// Package repositories implements SQLite persistence for the result cache.
//
// Key Implementations:
//   - [TrackResultRepository] : successfully processed tracks with their classified links, keyed by track URL
//   - [RunRepository] : one record per digging session with track and failure counts
//   - [TrackCacheAdapter] : plugs the track repository into the track processor
//
// Links are stored in discovery order (track_links.position) and removed with
// their track through ON DELETE CASCADE. Lookups of unknown tracks return
// [shared.ErrCacheMiss].
package repositories
