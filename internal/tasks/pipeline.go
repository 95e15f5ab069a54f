package tasks

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scdig/internal/models"
	"golang.org/x/time/rate"
)

// Processor handles one track.
type Processor interface {
	Process(ctx context.Context, track models.TrackRef) models.TrackResult
}

// PipelineOpts contains configuration for a digging run.
type PipelineOpts struct {
	Delay     time.Duration // Minimum spacing between track starts
	MaxTracks int           // Process only the first MaxTracks tracks when > 0
}

// Pipeline drives a [Processor] over a playlist, one track at a time.
type Pipeline struct {
	processor Processor
	logger    *log.Logger
}

// NewPipeline creates a pipeline around processor.
func NewPipeline(processor Processor, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{processor: processor, logger: logger}
}

// Run processes tracks in order and groups every discovered link by storefront.
//
// A failing track is listed in [models.Summary.Failures] and never stops the
// run. Cancellation is observed between tracks only; a track already being
// processed is finished first. On cancellation Run returns ctx.Err() and no summary.
func (p *Pipeline) Run(ctx context.Context, tracks []models.TrackRef, opts PipelineOpts, progress chan<- ProgressUpdate) (*models.Summary, error) {
	if opts.MaxTracks > 0 && len(tracks) > opts.MaxTracks {
		tracks = tracks[:opts.MaxTracks]
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	total := len(tracks)
	summary := models.NewSummary()
	p.logger.Info("processing playlist", "tracks", total, "delay", opts.Delay)

	started := time.Now()
	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("run cancelled", "completed", i, "tracks", total)
			return nil, err
		}
		if err := limiter.Wait(ctx); err != nil {
			p.logger.Warn("run cancelled", "completed", i, "tracks", total)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}

		result := p.processor.Process(context.WithoutCancel(ctx), track)
		aggregate(summary, result)
		sendProgress(progress, processTrackUpdate(i+1, total, result))
	}

	p.logSummary(summary, time.Since(started))
	sendProgress(progress, summaryUpdate(total, summary))
	return summary, nil
}

// aggregate files every link of result into its bucket. Tracks without links
// go to [models.SoundCloudOnly]; failed tracks only to the failure list.
func aggregate(summary *models.Summary, result models.TrackResult) {
	summary.Total++

	if result.Failed() {
		msg := result.Status.String()
		if result.Err != nil {
			msg = result.Err.Error()
		}
		summary.Failures = append(summary.Failures, models.Failure{Track: result.Track, Kind: result.Kind, Message: msg})
		return
	}

	title := result.Track.DisplayTitle()
	if len(result.Links) == 0 {
		summary.Append(models.SoundCloudOnly, models.Entry{Title: title, TrackURL: result.Track.URL, URL: result.Track.URL})
		return
	}
	for _, link := range result.Links {
		summary.Append(link.Category, models.Entry{Title: title, TrackURL: result.Track.URL, URL: link.URL})
	}
}

func (p *Pipeline) logSummary(summary *models.Summary, elapsed time.Duration) {
	fields := []any{"tracks", summary.Total, "failed", len(summary.Failures), "elapsed", elapsed.Round(time.Millisecond)}
	for _, c := range models.Categories() {
		fields = append(fields, c.String(), summary.Count(c))
	}
	p.logger.Info("playlist processed", fields...)
}
