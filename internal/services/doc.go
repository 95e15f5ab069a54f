// Package services retrieves SoundCloud track pages over HTTP.
//
// # Page Fetcher
//
// [PageFetcher] performs one GET per attempt, each bounded by [FetchOpts.Timeout],
// and sends a browser-like User-Agent because SoundCloud serves a reduced page
// to unknown clients.
//
// Transient failures are retried up to [FetchOpts.MaxRetries] times:
//   - timeouts and connection errors
//   - HTTP 429, honouring a Retry-After header
//   - HTTP 5xx
//
// The delay before retry n is BackoffBase * 2^(n-1), capped at MaxBackoff.
// Other 4xx responses and malformed URLs fail on the first attempt.
//
// # Error Handling
//
// Every failure is a [*FetchError] carrying the status code, the number of
// attempts and an [models.ErrorKind]:
//   - [models.NetworkTransient] : retries were exhausted
//   - [models.NetworkPermanent] : the request was not worth repeating
//
// errors.Is(err, [shared.ErrFetchFailed]) holds for all of them, and
// [shared.ErrInvalidURL] or [shared.ErrTimeout] are matched when they apply.
//
// # Testing
//
// Back-off waits go through a [Sleeper], replaced with [PageFetcher.SetSleeper]
// so tests can record delays instead of sleeping.
package services
