package links

import "strings"

var reservedFirst = segmentSet(
	"about", "contributors", "discover", "popular", "charts", "company", "jobs",
	"press", "legal", "advertisers", "terms-of-use", "privacy", "pages", "stream",
	"stations", "getstarted", "the-upload", "you", "search", "upload", "messages",
	"notifications", "settings", "mobile", "imprint",
)

var reservedSecond = segmentSet(
	"sets", "albums", "tracks", "followers", "following", "library", "likes",
	"comments", "reposts", "popular-tracks", "groups", "events", "spotlight",
)

// IsReservedPath reports whether the first two path segments name a SoundCloud
// site page rather than a user and one of their tracks.
func IsReservedPath(segments []string) bool {
	if len(segments) < 2 {
		return true
	}
	first := strings.ToLower(segments[0])
	if _, ok := reservedFirst[first]; ok || strings.HasPrefix(first, "pages") {
		return true
	}
	_, ok := reservedSecond[strings.ToLower(segments[1])]
	return ok
}

func pathSegments(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

func segmentSet(items ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}
