package playlist

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/scdig/internal/models"
)

const hydrationMarker = "window.__sc_hydration"

type hydrationEntry struct {
	Hydratable string          `json:"hydratable"`
	Data       json.RawMessage `json:"data"`
}

type hydratedPlaylist struct {
	Title      string            `json:"title"`
	TrackCount *int              `json:"track_count"`
	Tracks     []json.RawMessage `json:"tracks"`
}

type hydratedTrack struct {
	PermalinkURL string `json:"permalink_url"`
	Permalink    string `json:"permalink"`
	Title        string `json:"title"`
}

type hydration struct {
	title    string
	tracks   []models.TrackRef
	declared int
}

// parseHydration reads playlist entries from the page's hydration scripts.
// Malformed data is ignored.
func parseHydration(doc *goquery.Document) hydration {
	var h hydration
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		script := s.Text()
		idx := strings.Index(script, hydrationMarker)
		if idx < 0 {
			return
		}
		start := strings.Index(script[idx:], "[")
		if start < 0 {
			return
		}

		var entries []json.RawMessage
		if err := json.NewDecoder(strings.NewReader(script[idx+start:])).Decode(&entries); err != nil {
			return
		}
		for _, raw := range entries {
			h.addEntry(raw)
		}
	})
	return h
}

func (h *hydration) addEntry(raw json.RawMessage) {
	var entry hydrationEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Hydratable != "playlist" {
		return
	}

	var pl hydratedPlaylist
	if err := json.Unmarshal(entry.Data, &pl); err != nil {
		return
	}

	if h.title == "" {
		h.title = strings.TrimSpace(pl.Title)
	}
	if h.declared == 0 {
		if pl.TrackCount != nil && *pl.TrackCount > 0 {
			h.declared = *pl.TrackCount
		} else {
			h.declared = len(pl.Tracks)
		}
	}

	for _, rawTrack := range pl.Tracks {
		var t hydratedTrack
		if err := json.Unmarshal(rawTrack, &t); err != nil {
			continue
		}
		link := t.PermalinkURL
		if link == "" {
			link = t.Permalink
		}
		if link == "" {
			continue
		}
		h.tracks = append(h.tracks, models.TrackRef{URL: link, Title: strings.TrimSpace(t.Title)})
	}
}
