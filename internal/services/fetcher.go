package services

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/shared"
)

const (
	DefaultTimeout     = 20 * time.Second
	DefaultMaxRetries  = 5
	DefaultBackoffBase = 500 * time.Millisecond
	DefaultMaxBackoff  = 30 * time.Second
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

	maxRedirects = 10
)

// maxBodySize bounds a track page; larger bodies fail permanently.
var maxBodySize int64 = 16 << 20

// FetchOpts configures a [PageFetcher].
type FetchOpts struct {
	Timeout     time.Duration // Per-attempt limit
	MaxRetries  int           // Retries after the first attempt
	BackoffBase time.Duration // Delay before the first retry, doubled for each following one
	MaxBackoff  time.Duration // Upper bound for any single delay
	UserAgent   string
}

// DefaultFetchOpts returns the options used when nothing is configured.
func DefaultFetchOpts() FetchOpts {
	return FetchOpts{
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
		BackoffBase: DefaultBackoffBase,
		MaxBackoff:  DefaultMaxBackoff,
		UserAgent:   DefaultUserAgent,
	}
}

// FetchOptsFromConfig maps the [fetch] config section to [FetchOpts].
func FetchOptsFromConfig(c shared.FetchConfig) FetchOpts {
	return FetchOpts{
		Timeout:     c.Timeout,
		MaxRetries:  c.MaxRetries,
		BackoffBase: c.BackoffBase,
		MaxBackoff:  c.MaxBackoff,
		UserAgent:   c.UserAgent,
	}
}

// FetchError describes a page that could not be retrieved.
//
// It matches [shared.ErrFetchFailed] with errors.Is.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Attempts   int
	Retries    int
	Kind       models.ErrorKind
	Err        error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %s", shared.ErrFetchFailed, e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Retries > 0 {
		fmt.Fprintf(&b, " (after %d retries)", e.Retries)
	}
	return b.String()
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{shared.ErrFetchFailed}
	}
	return []error{shared.ErrFetchFailed, e.Err}
}

// statusError is a non-2xx response.
type statusError struct {
	code       int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

// PageFetcher downloads track pages with per-attempt timeouts and exponential back-off.
type PageFetcher struct {
	opts   FetchOpts
	client *http.Client
	logger *log.Logger
	sleep  Sleeper
}

// NewPageFetcher creates a fetcher. Zero-valued options fall back to their defaults;
// a zero MaxRetries is kept and disables retries.
func NewPageFetcher(opts FetchOpts, client *http.Client, logger *log.Logger) *PageFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BackoffBase < 0 {
		opts.BackoffBase = 0
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = DefaultMaxBackoff
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if client == nil {
		client = http.DefaultClient
	}
	if client.CheckRedirect == nil {
		c := *client
		c.CheckRedirect = limitRedirects
		client = &c
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &PageFetcher{opts: opts, client: client, logger: logger, sleep: sleepContext}
}

// limitRedirects mirrors the default client policy with an error
// that [isRetriable] can recognize.
func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", shared.ErrTooManyRedirects, len(via))
	}
	return nil
}

// SetSleeper replaces how back-off delays are waited out.
func (f *PageFetcher) SetSleeper(s Sleeper) {
	if s == nil {
		s = sleepContext
	}
	f.sleep = s
}

// Options returns the effective options.
func (f *PageFetcher) Options() FetchOpts {
	return f.opts
}

// Fetch returns the body of the page at rawURL.
//
// Timeouts, connection errors, 429 and 5xx responses are retried up to
// MaxRetries times. Certificate failures, redirect loops and oversized
// bodies are not. Every failure is a [*FetchError].
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", &FetchError{URL: rawURL, Kind: models.NetworkPermanent, Err: err}
	}

	logger := f.logger.With("url", rawURL)
	for attempt := 1; ; attempt++ {
		logger.Debug("fetching page", "attempt", attempt)

		body, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}

		retries := attempt - 1
		ferr := &FetchError{URL: rawURL, Attempts: attempt, Retries: retries, Kind: models.NetworkPermanent, Err: err}
		var se *statusError
		if errors.As(err, &se) {
			ferr.StatusCode = se.code
		}

		if ctx.Err() != nil {
			ferr.Err = ctx.Err()
			return "", ferr
		}
		if !isRetriable(err) {
			return "", ferr
		}
		if retries >= f.opts.MaxRetries {
			ferr.Kind = models.NetworkTransient
			return "", ferr
		}

		delay := f.retryDelay(err, attempt)
		logger.Warn("retrying page fetch", "attempt", attempt, "delay", delay, "err", err)
		if err := f.sleep(ctx, delay); err != nil {
			ferr.Err = err
			return "", ferr
		}
	}
}

func (f *PageFetcher) fetchOnce(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &statusError{code: resp.StatusCode, retryAfter: retryAfter}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: reading body: %v", shared.ErrTimeout, err)
		}
		return "", fmt.Errorf("reading body: %w", err)
	}
	if int64(len(body)) > maxBodySize {
		return "", fmt.Errorf("%w: exceeds %d bytes", shared.ErrBodyTooLarge, maxBodySize)
	}
	return string(body), nil
}

// isRetriable reports whether err is worth another attempt.
func isRetriable(err error) bool {
	if errors.Is(err, shared.ErrInvalidURL) ||
		errors.Is(err, shared.ErrBodyTooLarge) ||
		errors.Is(err, shared.ErrTooManyRedirects) {
		return false
	}
	if isCertificateError(err) {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= http.StatusInternalServerError
	}

	// Timeouts, refused connections, resets and truncated bodies.
	return true
}

func isCertificateError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}

func (f *PageFetcher) retryDelay(err error, attempt int) time.Duration {
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusTooManyRequests && se.retryAfter > 0 {
		return f.capDelay(se.retryAfter)
	}
	return f.backoffDelay(attempt)
}

// backoffDelay is the wait after the given 1-based attempt: base, base*2, base*4, ...
func (f *PageFetcher) backoffDelay(attempt int) time.Duration {
	base, maxDelay := f.opts.BackoffBase, f.opts.MaxBackoff
	if base <= 0 {
		return 0
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			return maxDelay
		}
		delay *= 2
	}
	return f.capDelay(delay)
}

func (f *PageFetcher) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if delay > f.opts.MaxBackoff {
		return f.opts.MaxBackoff
	}
	return delay
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", shared.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", shared.ErrInvalidURL)
	}
	return nil
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}
