// package services implements network access to SoundCloud track pages
package services

import (
	"context"
	"time"
)

// Fetcher retrieves the HTML of a track page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
