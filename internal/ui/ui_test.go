package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/tasks"
)

func testSummary() *models.Summary {
	s := models.NewSummary()
	s.Total = 3
	s.Append(models.Bandcamp, models.Entry{Title: "One", TrackURL: "https://soundcloud.com/a/one", URL: "https://a.bandcamp.com/track/one"})
	s.Append(models.Bandcamp, models.Entry{Title: "Two", TrackURL: "https://soundcloud.com/a/two", URL: "https://a.bandcamp.com/track/two"})
	s.Append(models.SoundCloudOnly, models.Entry{Title: "Three", TrackURL: "https://soundcloud.com/a/three", URL: "https://soundcloud.com/a/three"})
	return s
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newSizedModel(t *testing.T, s *models.Summary) *Model {
	t.Helper()
	m := NewModel(s, 0, 0)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return m
}

func TestCategoryItems(t *testing.T) {
	items := categoryItems(testSummary())
	if len(items) != len(models.Categories())+1 {
		t.Fatalf("expected %d items, got %d", len(models.Categories())+1, len(items))
	}

	tests := []struct {
		index int
		title string
		desc  string
	}{
		{0, "all", "3 links"},
		{1, "bandcamp", "2 links"},
		{2, "beatport", "0 links"},
		{7, "soundcloud_only", "1 link"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			item := items[tt.index].(categoryItem)
			if item.Title() != tt.title || item.FilterValue() != tt.title {
				t.Errorf("Title() = %q, want %q", item.Title(), tt.title)
			}
			if item.Description() != tt.desc {
				t.Errorf("Description() = %q, want %q", item.Description(), tt.desc)
			}
		})
	}
}

func TestModel(t *testing.T) {
	t.Run("Enter Selects Highlighted Category", func(t *testing.T) {
		m := newSizedModel(t, testSummary())
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %v", m.view)
		}
		if m.choice != "bandcamp" || len(m.links) != 2 {
			t.Errorf("expected bandcamp with 2 links, got %q with %d", m.choice, len(m.links))
		}
		if !strings.Contains(m.View(), "Open 2 links from bandcamp?") {
			t.Errorf("unexpected confirm view: %q", m.View())
		}
	})

	t.Run("Confirm Quits With Choice", func(t *testing.T) {
		m := newSizedModel(t, testSummary())
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		_, cmd := m.Update(keyRunes("y"))

		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		choice, ok := m.Choice()
		if choice != "all" || !ok {
			t.Errorf("Choice() = %q, %v", choice, ok)
		}
	})

	t.Run("No Returns To Categories", func(t *testing.T) {
		m := newSizedModel(t, testSummary())
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m.Update(keyRunes("n"))

		if m.view != CategoryView {
			t.Errorf("expected category view, got %v", m.view)
		}
		if choice, ok := m.Choice(); choice != "" || ok {
			t.Errorf("Choice() = %q, %v", choice, ok)
		}
	})

	t.Run("Empty Category Cannot Be Confirmed", func(t *testing.T) {
		m := newSizedModel(t, testSummary())
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if m.choice != "beatport" {
			t.Fatalf("expected beatport, got %q", m.choice)
		}
		if !strings.Contains(m.View(), "No links to open") {
			t.Errorf("unexpected view: %q", m.View())
		}
		if _, cmd := m.Update(keyRunes("y")); cmd != nil {
			t.Error("expected no command for empty category")
		}
		if _, ok := m.Choice(); ok {
			t.Error("expected unconfirmed choice")
		}
	})

	t.Run("Quit Without Choice", func(t *testing.T) {
		m := newSizedModel(t, testSummary())
		_, cmd := m.Update(keyRunes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := m.Choice(); ok {
			t.Error("expected unconfirmed choice")
		}
	})

	t.Run("Preview Applies Skip And Limit", func(t *testing.T) {
		m := NewModel(testSummary(), 1, 1)
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if len(m.links) != 1 || m.links[0].Title != "Two" {
			t.Errorf("unexpected links: %+v", m.links)
		}
	})
}

func TestSummaryView(t *testing.T) {
	s := testSummary()
	s.Failures = append(s.Failures, models.Failure{
		Track:   models.TrackRef{URL: "https://soundcloud.com/a/four"},
		Kind:    models.NetworkPermanent,
		Message: "HTTP 404",
	})
	out := SummaryView(s)

	for _, want := range []string{"Processed 3 tracks", "bandcamp", "soundcloud_only", "Failed to process 1 tracks", "Unknown title", "network_permanent: HTTP 404"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	t.Run("Without Failures", func(t *testing.T) {
		if strings.Contains(SummaryView(testSummary()), "Failed") {
			t.Error("expected no failure section")
		}
	})
}

func TestProgressLine(t *testing.T) {
	u := tasks.ProgressUpdate{Message: "[1/2] ✓ One (1 links)", Data: models.TrackResult{}}
	if got := ProgressLine(u); !strings.Contains(got, "One") {
		t.Errorf("ProgressLine() = %q", got)
	}
	if got := ProgressLine(tasks.ProgressUpdate{Message: "done"}); got != "done" {
		t.Errorf("ProgressLine() = %q", got)
	}
}
