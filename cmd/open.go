package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/scdig/internal/formatter"
	"github.com/desertthunder/scdig/internal/shared"
	"github.com/desertthunder/scdig/internal/ui"
	"github.com/urfave/cli/v3"
)

// Open loads a summary file and opens the links of one category, or all of them.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("summary_file")
	if path == "" {
		return fmt.Errorf("%w: summary_file", shared.ErrMissingArgument)
	}

	summary, err := formatter.LoadSummary(path)
	if err != nil {
		return err
	}

	r.writePlainHeader("Links per category")
	r.writePlain("%s", ui.CountsView(summary))

	if cmd.Bool("no-open") {
		return nil
	}

	skip, limit := cmd.Int("skip"), cmd.Int("limit")
	if skip < 0 || limit < 0 {
		return fmt.Errorf("%w: --skip and --limit must not be negative", shared.ErrInvalidArgument)
	}
	if cmd.IsSet("limit") && limit == 0 {
		return fmt.Errorf("%w: --limit must be at least 1; omit it to open every link", shared.ErrInvalidArgument)
	}

	category := cmd.String("category")
	if category == "" {
		choice, ok, err := r.pick(summary, skip, limit)
		if err != nil {
			return err
		}
		if !ok {
			r.logger.Info("nothing selected")
			return nil
		}
		category = choice
	}

	links, err := formatter.Flatten(summary, category, skip, limit)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		r.writePlainln("No links to open in %s", category)
		return nil
	}

	browser := r.config.Open.Browser
	if cmd.IsSet("browser") {
		browser = cmd.String("browser")
	}
	if _, _, err := shared.BrowserCommand(browser, links[0].URL); err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "category", category, "browser", browser)
	logger.Info("opening links", "count", len(links))

	opened, fallbacks := 0, 0
	for i, link := range links {
		if i > 0 && r.config.Open.Interval > 0 {
			if err := wait(ctx, r.config.Open.Interval); err != nil {
				return err
			}
		}
		if err := r.openURL(browser, link.URL); err != nil {
			logger.Warn("failed to open link", "url", link.URL, "error", err)
			continue
		}
		opened++
		if link.Fallback {
			fallbacks++
		}
		logger.Debug("opened link", "url", link.URL, "title", link.Title, "fallback", link.Fallback)
	}

	if fallbacks > 0 {
		logger.Info("some entries had no store link; opened their track pages", "count", fallbacks)
	}
	return r.writePlainln("✓ Opened %d of %d links", opened, len(links))
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
