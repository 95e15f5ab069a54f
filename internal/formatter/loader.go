package formatter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/shared"
	"gopkg.in/yaml.v3"
)

// AllCategories selects every category in [Flatten].
const AllCategories = "all"

// LoadSummary reads a summary exported by [Export].
//
// Files ending in .yaml or .yml are read as YAML, anything else as JSON. The
// document must be an object of lists of objects that each carry "track_url".
// Entries written by older versions with "shop_link" instead of "url" are
// accepted, and unknown categories are filed under [models.Others].
func LoadSummary(path string) (*models.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}

	var raw any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid summary: %v", shared.ErrInvalidInput, path, err)
	}

	return summaryFromDocument(raw)
}

func summaryFromDocument(raw any) (*models.Summary, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: summary must be an object of categories", shared.ErrInvalidInput)
	}

	s := models.NewSummary()
	// known categories first so entries keep display order
	keys := make([]string, 0, len(doc))
	for _, c := range models.Categories() {
		if _, ok := doc[c.String()]; ok {
			keys = append(keys, c.String())
		}
	}
	var unknown []string
	for key := range doc {
		if !slices.Contains(keys, key) {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	keys = append(keys, unknown...)

	for _, key := range keys {
		items, ok := doc[key].([]any)
		if !ok {
			if doc[key] == nil {
				continue
			}
			return nil, fmt.Errorf("%w: category %q must contain a list", shared.ErrInvalidInput, key)
		}

		category, err := models.ParseCategory(key)
		if err != nil {
			category = models.Others
		}

		for i, item := range items {
			fields, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: item %d of %q must be an object", shared.ErrInvalidInput, i, key)
			}
			if _, ok := fields["track_url"]; !ok {
				return nil, fmt.Errorf("%w: item %d of %q has no track_url", shared.ErrInvalidInput, i, key)
			}

			url := stringField(fields, "url")
			if url == "" {
				url = stringField(fields, "shop_link")
			}
			s.Append(category, models.Entry{
				Title:    stringField(fields, "title"),
				TrackURL: stringField(fields, "track_url"),
				URL:      url,
			})
		}
	}
	return s, nil
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return strings.TrimSpace(v)
}

// Link is one URL to open.
type Link struct {
	Category models.Category
	Title    string
	URL      string
	Fallback bool // URL is the track page because the entry had no store link
}

// Flatten lists the links of category (or [AllCategories]) in display order,
// then drops the first skip links and keeps at most limit (all when limit <= 0).
//
// Entries whose url is empty or equal to the track URL open the track page.
// Entries with neither are dropped before skip and limit apply.
func Flatten(s *models.Summary, category string, skip, limit int) ([]Link, error) {
	var categories []models.Category
	if strings.EqualFold(strings.TrimSpace(category), AllCategories) || category == "" {
		categories = models.Categories()
	} else {
		c, err := models.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		categories = []models.Category{c}
	}

	links := []Link{}
	for _, c := range categories {
		for _, e := range s.Buckets[c] {
			link := Link{Category: c, Title: e.Title, URL: e.URL}
			if link.URL == "" || link.URL == e.TrackURL {
				link.URL = e.TrackURL
				link.Fallback = true
			}
			if link.URL == "" {
				continue
			}
			links = append(links, link)
		}
	}

	if skip > 0 {
		if skip >= len(links) {
			return []Link{}, nil
		}
		links = links[skip:]
	}
	if limit > 0 && limit < len(links) {
		links = links[:limit]
	}
	return links, nil
}
