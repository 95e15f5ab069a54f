// Package links finds and classifies storefront links on SoundCloud track pages.
//
// # Classification
//
// [Classify] maps a URL to a [models.Category] using an ordered table of
// storefront domains. It is pure and total: malformed input is [models.Others].
//
// # Extraction
//
// [ParsePage] parses a track page with scripting disabled so that the
// server-rendered markup SoundCloud places inside <noscript> is visible.
// [Page.Links] returns candidate external links in document order after
// normalization and denylist filtering; [Extract] is the one-shot form.
//
// Normalization trims whitespace, resolves relative hrefs against the page
// URL given to [ParsePage] and protocol-relative URLs to https, unwraps SoundCloud's outbound redirectors (gate.sc, exit.sc) and drops
// fragments.
package links
