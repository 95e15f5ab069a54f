// package models defines the data model for the playlist link digger
package models

import (
	"fmt"
	"strings"
)

// Category is the storefront a link belongs to.
//
// The zero value is [Bandcamp]; categories are ordered for display and export.
type Category int

const (
	Bandcamp Category = iota
	Beatport
	JunoDownload
	Hypeddit
	SoundCloudDownload
	Others
	SoundCloudOnly // marker for tracks without any qualifying link, never a link category
)

var categoryNames = map[Category]string{
	Bandcamp:           "bandcamp",
	Beatport:           "beatport",
	JunoDownload:       "junodownload",
	Hypeddit:           "hypeddit",
	SoundCloudDownload: "soundcloud_download",
	Others:             "others",
	SoundCloudOnly:     "soundcloud_only",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return ""
}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{Bandcamp, Beatport, JunoDownload, Hypeddit, SoundCloudDownload, Others, SoundCloudOnly}
}

// ParseCategory maps a category name (case-insensitive) back to its [Category].
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range Categories() {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", name)
}

// TrackRef identifies one track of a playlist.
type TrackRef struct {
	URL   string // Canonical track page URL
	Title string // Display title, may be empty
}

// DisplayTitle returns the title or a placeholder when it is unknown.
func (t TrackRef) DisplayTitle() string {
	if t.Title == "" {
		return "Unknown title"
	}
	return t.Title
}

// ClassifiedLink is an external URL tagged with its storefront.
type ClassifiedLink struct {
	URL      string
	Category Category
}

// Status is the outcome of processing one track.
type Status int

const (
	StatusOK Status = iota
	StatusFetchFailed
	StatusParseFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFetchFailed:
		return "fetch_failed"
	case StatusParseFailed:
		return "parse_failed"
	default:
		return ""
	}
}

// ErrorKind classifies why a track failed.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	NetworkTransient
	NetworkPermanent
	ParseError
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkTransient:
		return "network_transient"
	case NetworkPermanent:
		return "network_permanent"
	case ParseError:
		return "parse_error"
	default:
		return "none"
	}
}

// TrackResult is the per-track output of the processor.
//
// Links are unique by URL and kept in discovery order. A result is never
// modified once built; build a new one instead.
type TrackResult struct {
	Track  TrackRef
	Links  []ClassifiedLink
	Status Status
	Kind   ErrorKind // KindNone when Status is StatusOK
	Err    error     // Failure cause, nil when Status is StatusOK
}

// Failed reports whether the track could not be processed.
func (r TrackResult) Failed() bool {
	return r.Status != StatusOK
}

// Entry is one line of a summary bucket.
type Entry struct {
	Title    string `json:"title" yaml:"title"`
	TrackURL string `json:"track_url" yaml:"track_url"`
	URL      string `json:"url" yaml:"url"`
}

// Failure records a track excluded from every bucket.
type Failure struct {
	Track   TrackRef
	Kind    ErrorKind
	Message string
}

// Summary groups every discovered link by storefront.
type Summary struct {
	Buckets  map[Category][]Entry
	Failures []Failure
	Total    int // Tracks processed, failed ones included
}

// NewSummary creates an empty [Summary].
func NewSummary() *Summary {
	return &Summary{Buckets: make(map[Category][]Entry)}
}

// Append adds an entry to the bucket of category c.
func (s *Summary) Append(c Category, e Entry) {
	s.Buckets[c] = append(s.Buckets[c], e)
}

// Count returns the number of entries in category c.
func (s *Summary) Count(c Category) int {
	return len(s.Buckets[c])
}

// Document converts the summary to the plain nested mapping handed to export sinks.
//
// Every category is present; empty categories map to an empty list.
func (s *Summary) Document() map[string][]Entry {
	doc := make(map[string][]Entry, len(categoryNames))
	for _, c := range Categories() {
		entries := make([]Entry, len(s.Buckets[c]))
		copy(entries, s.Buckets[c])
		doc[c.String()] = entries
	}
	return doc
}
