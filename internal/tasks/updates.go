package tasks

import (
	"fmt"

	"github.com/desertthunder/scdig/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ProcessTrack Phase = iota
	Summarize
)

func (p Phase) String() string {
	switch p {
	case ProcessTrack:
		return "process_track"
	case Summarize:
		return "summarize"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}

func processTrackUpdate(step, total int, result models.TrackResult) ProgressUpdate {
	var msg string
	switch {
	case result.Failed():
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, result.Track.DisplayTitle(), result.Status)
	case len(result.Links) == 0:
		msg = fmt.Sprintf("[%d/%d] ✓ %s (no store links)", step, total, result.Track.DisplayTitle())
	default:
		msg = fmt.Sprintf("[%d/%d] ✓ %s (%d links)", step, total, result.Track.DisplayTitle(), len(result.Links))
	}

	return ProgressUpdate{
		Phase:   ProcessTrack,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    result,
	}
}

func summaryUpdate(total int, summary *models.Summary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Summarize,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Processed %d tracks (%d failed)", summary.Total, len(summary.Failures)),
		Data:    summary,
	}
}
