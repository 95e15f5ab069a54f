// Package playlist reads the tracks of a SoundCloud playlist from a page saved in
// a browser.
//
// SoundCloud renders playlists lazily, so the saved page is the source of truth:
// anchors pointing at https://soundcloud.com/<user>/<track> are collected in
// document order, then tracks only present in the window.__sc_hydration JSON are
// appended. Navigation and profile pages (sets, likes, reposts, ...) are skipped.
//
// The playlist's own track count is read from the hydration data, a
// <meta itemprop="numTracks"> tag or a "N tracks" caption, so callers can warn
// when the saved page was not scrolled to the end.
package playlist
