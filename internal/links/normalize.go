package links

import (
	"net/url"
	"strings"
)

// redirectors holds SoundCloud's outbound link wrappers, which carry the target in the "url" query parameter.
var redirectors = []string{"gate.sc", "exit.sc"}

// Normalize canonicalizes a raw href into an absolute http(s) URL.
//
// It returns false for relative, non-web or malformed hrefs.
func Normalize(href string) (string, bool) {
	return normalize(href, true)
}

// Resolve resolves href against the page URL base, then normalizes it like [Normalize].
//
// With a nil base, relative hrefs are rejected.
func Resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if base != nil && href != "" {
		ref, err := url.Parse(href)
		if err != nil {
			return "", false
		}
		href = base.ResolveReference(ref).String()
	}
	return normalize(href, true)
}

func normalize(href string, unwrap bool) (string, bool) {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, ok := parseWebURL(href)
	if !ok {
		return "", false
	}

	if unwrap && hasAnyDomain(hostOf(u), redirectors) {
		if target := u.Query().Get("url"); target != "" {
			return normalize(target, false)
		}
	}

	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), true
}
