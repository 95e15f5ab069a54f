package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/scdig/internal/formatter"
	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/playlist"
	"github.com/desertthunder/scdig/internal/repositories"
	"github.com/desertthunder/scdig/internal/services"
	"github.com/desertthunder/scdig/internal/shared"
	"github.com/desertthunder/scdig/internal/tasks"
	"github.com/desertthunder/scdig/internal/ui"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// Dig processes every track of a saved playlist page and exports the summary.
func (r *Runner) Dig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("html_file")
	if path == "" {
		return fmt.Errorf("%w: html_file", shared.ErrMissingArgument)
	}

	config := r.digConfig(cmd)
	if err := config.Validate(); err != nil {
		return err
	}
	format, err := formatter.ParseFormat(config.Export.Format)
	if err != nil {
		return err
	}

	pl, err := playlist.LoadSavedPage(path)
	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}
	if len(pl.Tracks) == 0 {
		return fmt.Errorf("%w: no track links found in %s", shared.ErrInvalidInput, path)
	}
	if pl.Incomplete() {
		r.logger.Warn("saved page lists fewer tracks than the playlist declares; scroll to the end before saving",
			"collected", len(pl.Tracks), "declared", pl.Declared)
	}
	r.logger.Info("loaded playlist", "title", pl.Title, "tracks", len(pl.Tracks))

	total := len(pl.Tracks)
	if config.Pipeline.MaxTracks > 0 && config.Pipeline.MaxTracks < total {
		total = config.Pipeline.MaxTracks
	}

	processor := tasks.NewTrackProcessor(r.newFetcher(services.FetchOptsFromConfig(config.Fetch)), r.logger)

	var (
		runs *repositories.RunRepository
		run  *models.Run
	)
	if config.Cache.Enabled {
		db, err := shared.OpenCache(config.Cache)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer db.Close()

		runs = repositories.NewRunRepository(db)
		if run, err = runs.Start(path, total); err != nil {
			return err
		}
		processor.SetCache(repositories.NewTrackCacheAdapter(repositories.NewTrackResultRepository(db), run.ID))
		r.logger.Debug("cache enabled", "path", config.Cache.Path, "run", run.ID)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go r.renderProgress(progress, total, done)

	pipeline := tasks.NewPipeline(processor, r.logger)
	summary, err := pipeline.Run(ctx, pl.Tracks, tasks.PipelineOpts{
		Delay:     config.Pipeline.Delay,
		MaxTracks: config.Pipeline.MaxTracks,
	}, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("dig stopped before finishing: %w", err)
	}

	if runs != nil {
		if err := runs.Finish(run, summary); err != nil {
			r.logger.Warn("failed to record run", "error", err)
		}
	}

	written, err := formatter.Export(summary, format, config.Export.Output)
	if err != nil {
		return err
	}

	r.writePlain("\n%s", ui.SummaryView(summary))
	if written != "" {
		r.writePlain("\n%s %s\n", ui.Success("✓ Summary written to"), written)
	}
	return nil
}

// digConfig overlays the dig flags that were set on the loaded configuration.
func (r *Runner) digConfig(cmd *cli.Command) shared.Config {
	config := *r.config

	if cmd.IsSet("export") {
		config.Export.Format = cmd.String("export")
	}
	if cmd.IsSet("output") {
		config.Export.Output = cmd.String("output")
	}
	if cmd.IsSet("delay") {
		config.Pipeline.Delay = cmd.Duration("delay")
	}
	if cmd.IsSet("max-tracks") {
		config.Pipeline.MaxTracks = cmd.Int("max-tracks")
	}
	if cmd.IsSet("timeout") {
		config.Fetch.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("max-retries") {
		config.Fetch.MaxRetries = cmd.Int("max-retries")
	}
	if cmd.IsSet("backoff") {
		config.Fetch.BackoffBase = cmd.Duration("backoff")
	}
	if cmd.IsSet("cache") {
		config.Cache.Enabled = cmd.Bool("cache")
	}
	return config
}

// renderProgress draws a progress bar with one line per processed track
// until progress is closed.
func (r *Runner) renderProgress(progress <-chan tasks.ProgressUpdate, total int, done chan<- struct{}) {
	defer close(done)

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.output),
		progressbar.OptionSetDescription("Digging"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(0),
		progressbar.OptionSetPredictTime(false),
	)

	for update := range progress {
		if update.Phase != tasks.ProcessTrack {
			continue
		}
		bar.Clear()
		r.writePlain("%s\n", ui.ProgressLine(update))
		bar.Set(update.Step)
	}
	bar.Finish()
	r.writePlain("\n")
}

// openStore opens the cache database regardless of whether caching is enabled for runs.
func (r *Runner) openStore() (*sql.DB, error) {
	db, err := shared.OpenCache(r.config.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return db, nil
}
