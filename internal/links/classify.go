package links

import (
	"net/url"
	"strings"

	"github.com/desertthunder/scdig/internal/models"
)

// storeRule maps a set of domains to a storefront category.
type storeRule struct {
	category models.Category
	domains  []string
	match    func(u *url.URL) bool // optional extra check on the parsed URL
}

// first match wins
var storeRules = []storeRule{
	{category: models.Bandcamp, domains: []string{"bandcamp.com"}},
	{category: models.Beatport, domains: []string{"beatport.com"}},
	{category: models.JunoDownload, domains: []string{"junodownload.com", "juno.co.uk"}},
	{category: models.Hypeddit, domains: []string{"hypeddit.com", "hypd.it"}},
	{category: models.SoundCloudDownload, domains: []string{"soundcloud.com"}, match: isDownloadPath},
}

// Classify returns the storefront category of rawURL.
//
// Hosts are compared case-insensitively on label boundaries, so
// "artist.bandcamp.com" is [models.Bandcamp] but "notbandcamp.com" is not.
// Anything unparseable or unknown is [models.Others].
func Classify(rawURL string) models.Category {
	u, ok := parseWebURL(rawURL)
	if !ok {
		return models.Others
	}

	host := hostOf(u)
	for _, rule := range storeRules {
		if !hasAnyDomain(host, rule.domains) {
			continue
		}
		if rule.match != nil && !rule.match(u) {
			continue
		}
		return rule.category
	}
	return models.Others
}

// IsSoundCloudDownload reports whether rawURL is a SoundCloud download redirect
// such as https://soundcloud.com/artist/track/download.
func IsSoundCloudDownload(rawURL string) bool {
	u, ok := parseWebURL(rawURL)
	if !ok {
		return false
	}
	return hasDomain(hostOf(u), "soundcloud.com") && isDownloadPath(u)
}

// isDownloadPath matches /<user>/<track>/download only.
func isDownloadPath(u *url.URL) bool {
	segments := pathSegments(u.Path)
	if len(segments) != 3 || !strings.EqualFold(segments[2], "download") {
		return false
	}
	return !IsReservedPath(segments[:2])
}

// parseWebURL parses an absolute http(s) URL with a host.
func parseWebURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

// hostOf returns the lower-cased host without port, trailing dot or "www." prefix.
func hostOf(u *url.URL) string {
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	return strings.TrimPrefix(host, "www.")
}

func hasDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func hasAnyDomain(host string, domains []string) bool {
	for _, d := range domains {
		if hasDomain(host, d) {
			return true
		}
	}
	return false
}
