package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/tasks"
)

var countStyle = lipgloss.NewStyle().Width(22)

// CountsView renders one line per category with its entry count.
func CountsView(s *models.Summary) string {
	var b strings.Builder
	for _, c := range models.Categories() {
		n := fmt.Sprintf("%d", s.Count(c))
		if s.Count(c) > 0 {
			n = Success(n)
		} else {
			n = Muted(n)
		}
		fmt.Fprintf(&b, "  %s%s\n", countStyle.Render(c.String()), n)
	}
	return b.String()
}

// SummaryView renders the end-of-run report: totals, counts and failed tracks.
func SummaryView(s *models.Summary) string {
	var b strings.Builder
	b.WriteString(Title(fmt.Sprintf("Processed %d tracks", s.Total)))
	b.WriteString("\n")
	b.WriteString(CountsView(s))

	if len(s.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(Warning(fmt.Sprintf("Failed to process %d tracks:", len(s.Failures))))
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "\n  • %s %s\n    %s: %s", f.Track.DisplayTitle(), Muted(f.Track.URL), f.Kind, f.Message)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ProgressLine renders a per-track progress update for line-oriented output.
func ProgressLine(u tasks.ProgressUpdate) string {
	result, ok := u.Data.(models.TrackResult)
	if !ok {
		return u.Message
	}
	if result.Failed() {
		return Error(u.Message)
	}
	return u.Message
}
