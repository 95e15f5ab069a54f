package links

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/scdig/internal/shared"
	"golang.org/x/net/html"
)

// ownHosts are SoundCloud's own playback, streaming and app hosts.
var ownHosts = []string{"soundcloud.com", "sndcdn.com", "soundcloud.cloud", "soundcloud.app.goo.gl", "on.soundcloud.com"}

// noiseHosts never carry store links: analytics, ads and app store badges.
var noiseHosts = []string{
	"doubleclick.net",
	"google-analytics.com",
	"googletagmanager.com",
	"googlesyndication.com",
	"scorecardresearch.com",
	"quantserve.com",
	"apps.apple.com",
	"play.google.com",
	"wa.me",
}

// sharePaths are social-share endpoints, matched by host and path prefix.
var sharePaths = []struct {
	domain string
	prefix string
}{
	{"facebook.com", "/sharer"},
	{"facebook.com", "/dialog/share"},
	{"twitter.com", "/intent"},
	{"twitter.com", "/share"},
	{"x.com", "/intent"},
	{"pinterest.com", "/pin/create"},
	{"reddit.com", "/submit"},
	{"tumblr.com", "/share"},
	{"tumblr.com", "/widgets/share"},
	{"linkedin.com", "/sharing"},
	{"linkedin.com", "/shareArticle"},
	{"itunes.apple.com", "/app"},
}

var purchaseURLPattern = regexp.MustCompile(`"purchase_url"\s*:\s*"((?:[^"\\]|\\.)*)"`)

var titleSuffixes = []string{" | Listen online for free on SoundCloud", " | SoundCloud"}

// Page is a parsed track page.
type Page struct {
	doc  *goquery.Document
	base *url.URL // relative hrefs resolve against it, nil when unknown
}

// ParsePage parses a track page fetched from pageURL. Malformed markup is
// tolerated; only an empty document or a failing reader is reported, wrapped
// in [shared.ErrParse]. An empty or invalid pageURL leaves relative links unresolved.
func ParsePage(document, pageURL string) (*Page, error) {
	if strings.TrimSpace(document) == "" {
		return nil, fmt.Errorf("%w: empty document", shared.ErrParse)
	}

	root, err := html.ParseWithOptions(strings.NewReader(document), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrParse, err)
	}

	base, _ := parseWebURL(pageURL)
	return &Page{doc: goquery.NewDocumentFromNode(root), base: base}, nil
}

// Extract returns the candidate store links of the track page at pageURL in document order.
func Extract(document, pageURL string) ([]string, error) {
	page, err := ParsePage(document, pageURL)
	if err != nil {
		return nil, err
	}
	return page.Links(), nil
}

// ExtractTitle returns the cleaned title of a track page, or "" when it has none.
func ExtractTitle(document string) string {
	page, err := ParsePage(document, "")
	if err != nil {
		return ""
	}
	return page.Title()
}

// Links returns deduplicated candidate links: anchor and area hrefs first,
// then purchase URLs found in inline hydration scripts.
func (p *Page) Links() []string {
	seen := make(map[string]struct{})
	links := []string{}

	add := func(href string) {
		link, ok := Resolve(p.base, href)
		if !ok || !isCandidate(link) {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	p.doc.Find("[href]").Each(func(_ int, s *goquery.Selection) {
		if name := goquery.NodeName(s); name != "a" && name != "area" {
			return
		}
		href, _ := s.Attr("href")
		add(href)
	})

	p.doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		for _, m := range purchaseURLPattern.FindAllStringSubmatch(s.Text(), -1) {
			var decoded string
			if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &decoded); err != nil {
				continue
			}
			add(decoded)
		}
	})

	return links
}

// Title returns the page title without SoundCloud's suffix, falling back to og:title.
func (p *Page) Title() string {
	title := strings.TrimSpace(p.doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(p.doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}

	for _, suffix := range titleSuffixes {
		if before, _, found := strings.Cut(title, suffix); found {
			return strings.TrimSpace(before)
		}
	}
	return title
}

// isCandidate applies the denylist to a normalized link.
func isCandidate(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	host := hostOf(u)
	if hasAnyDomain(host, ownHosts) {
		return IsSoundCloudDownload(link)
	}
	if hasAnyDomain(host, noiseHosts) {
		return false
	}

	for _, sp := range sharePaths {
		if hasDomain(host, sp.domain) && strings.HasPrefix(u.Path, sp.prefix) {
			return false
		}
	}
	return true
}
