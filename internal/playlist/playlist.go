package playlist

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/scdig/internal/links"
	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/shared"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

const baseURL = "https://soundcloud.com"

// dropped from track URLs; "in" names the playlist the track was opened from
var trackingParams = set("in", "si", "ref")

var soundcloudHosts = set("soundcloud.com", "www.soundcloud.com", "m.soundcloud.com")

var (
	containsTracksPattern = regexp.MustCompile(`(?i)Contains tracks\s*(\d+)`)
	inlineTracksPattern   = regexp.MustCompile(`(?i)\b(\d{1,4})\s+tracks?\b`)
)

// Playlist is the ordered track list of a saved playlist page.
type Playlist struct {
	Title    string
	Tracks   []models.TrackRef
	Declared int // Track count announced by the page, 0 when unknown
}

// Incomplete reports whether fewer or more tracks were found than the page declares.
func (p *Playlist) Incomplete() bool {
	return p.Declared > 0 && p.Declared != len(p.Tracks)
}

// LoadSavedPage reads a saved playlist page from disk.
//
// Files that are not valid UTF-8 are decoded as Latin-1.
func LoadSavedPage(path string) (*Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist page: %w", err)
	}

	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %v", shared.ErrParse, path, err)
		}
		data = decoded
	}
	return ParseSavedPage(string(data))
}

// ParseSavedPage extracts the tracks of a playlist page.
//
// Only an empty document is an error; a page without tracks yields an empty list.
func ParseSavedPage(document string) (*Playlist, error) {
	if strings.TrimSpace(document) == "" {
		return nil, fmt.Errorf("%w: empty document", shared.ErrParse)
	}

	root, err := html.ParseWithOptions(strings.NewReader(document), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrParse, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	b := newBuilder()
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		b.add(href, strings.Join(strings.Fields(s.Text()), " "))
	})

	hydrated := parseHydration(doc)
	for _, t := range hydrated.tracks {
		b.add(t.URL, t.Title)
	}

	p := &Playlist{
		Title:    hydrated.title,
		Tracks:   b.tracks(),
		Declared: hydrated.declared,
	}
	if p.Title == "" {
		p.Title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}
	if p.Declared == 0 {
		p.Declared = declaredCount(doc)
	}
	return p, nil
}

// builder collects unique tracks in first-seen order.
type builder struct {
	order  []string
	titles map[string]string
}

func newBuilder() *builder {
	return &builder{titles: make(map[string]string)}
}

func (b *builder) add(href, title string) {
	u, ok := TrackURL(href)
	if !ok {
		return
	}
	if existing, seen := b.titles[u]; seen {
		if existing == "" {
			b.titles[u] = title
		}
		return
	}
	b.order = append(b.order, u)
	b.titles[u] = title
}

func (b *builder) tracks() []models.TrackRef {
	refs := make([]models.TrackRef, 0, len(b.order))
	for _, u := range b.order {
		refs = append(refs, models.TrackRef{URL: u, Title: b.titles[u]})
	}
	return refs
}

// TrackURL returns the canonical form of a SoundCloud track link, or false when
// href does not point at a track.
func TrackURL(href string) (string, bool) {
	href = strings.TrimSpace(href)
	switch {
	case strings.HasPrefix(href, "//"):
		href = "https:" + href
	case strings.HasPrefix(href, "/"):
		href = baseURL + href
	}

	u, err := url.Parse(href)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	if _, ok := soundcloudHosts[strings.ToLower(u.Hostname())]; !ok {
		return "", false
	}

	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if links.IsReservedPath(segments) {
		return "", false
	}

	// private tracks carry a secret token as a third segment
	path := "/" + segments[0] + "/" + segments[1]
	if len(segments) > 2 && strings.HasPrefix(segments[2], "s-") {
		path += "/" + segments[2]
	}

	clean := url.URL{Scheme: "https", Host: "soundcloud.com", Path: path, RawQuery: cleanQuery(u.RawQuery)}
	return clean.String(), true
}

func cleanQuery(raw string) string {
	if raw == "" {
		return ""
	}
	var kept []string
	for _, param := range strings.Split(raw, "&") {
		key, _, _ := strings.Cut(param, "=")
		if _, drop := trackingParams[strings.ToLower(key)]; drop || strings.HasPrefix(key, "utm_") || param == "" {
			continue
		}
		kept = append(kept, param)
	}
	return strings.Join(kept, "&")
}

func declaredCount(doc *goquery.Document) int {
	meta := doc.Find(`meta[itemprop="numTracks"]`).First()
	for _, attr := range []string{"content", "value"} {
		if n, err := strconv.Atoi(strings.TrimSpace(meta.AttrOr(attr, ""))); err == nil && n > 0 {
			return n
		}
	}

	text := visibleText(doc)
	for _, re := range []*regexp.Regexp{containsTracksPattern, inlineTracksPattern} {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

// visibleText joins the page's text nodes outside script and style elements.
func visibleText(doc *goquery.Document) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, item := range items {
		m[item] = struct{}{}
	}
	return m
}
