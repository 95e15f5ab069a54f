// Package models defines the domain types shared by every stage of a digging run.
//
// The package contains:
//
//  1. Input: [TrackRef] identifies a playlist track by page URL and optional title.
//  2. Per-track output: [ClassifiedLink] and [TrackResult], built by the track processor.
//  3. Aggregates: [Summary], [Entry] and [Failure], built once by the pipeline.
//
// [Category] is a closed enumeration; [SoundCloudOnly] marks tracks without a
// qualifying external link and is never attached to a URL.
//
// [ErrorKind] separates transient network failures (retried by the fetcher)
// from permanent ones and from unparseable pages.
package models
