// Package tasks digs through a playlist for store links with real-time progress reporting.
//
// # Core Operations
//
//  1. [TrackProcessor.Process] : one track
//     - Fetches the track page through a [PageFetcher]
//     - Extracts candidate links and classifies them by storefront
//     - Reports fetch and parse failures in the [models.TrackResult]
//
//  2. [Pipeline.Run] : a whole playlist
//     - Processes tracks strictly in order, spaced by [PipelineOpts.Delay]
//     - Truncates to [PipelineOpts.MaxTracks] when set
//     - Groups every link into a [models.Summary] bucket
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// A [ProcessTrack] update carries the track's [models.TrackResult]; the final
// [Summarize] update carries the [models.Summary].
// Updates use select with default to prevent blocking.
//
// # Cancellation
//
// The run context is checked before each track and while waiting between
// tracks. A track already in flight is processed on a detached context and
// completes or times out on its own. A cancelled run returns no summary.
//
// # Track Caching
//
// The optional [TrackCacher] interface lets the processor skip tracks seen in
// earlier runs (repositories.TrackCacheAdapter).
//
// Cache misses are silent; other lookup errors are logged as warnings and the
// track is fetched.
//
// Store errors are logged and never fail the track.
package tasks
