// Package news fetches headlines from configured web sources.
//
// # Overview
//
// A Source names a page and the CSS selector that matches its headline
// elements. The Scraper fetches the page with goquery and keeps the first
// few non-empty matches. It never returns an error: a source that times
// out, answers with a non-2xx status or matches nothing contributes an
// empty list.
//
// # Aggregation
//
// The Aggregator fetches every selected source concurrently and assembles
// a Result in configured order:
//
//	agg := news.NewAggregator(sources, scraper, logger)
//	result, err := agg.Fetch(ctx, nil)
//
// A failure or panic in one source leaves the others untouched. Fetch only
// returns an error when ctx ends before the fetches complete.
//
// # Caching
//
// CachedFetcher wraps any HeadlineFetcher with a TTL cache. Only non-empty
// headline lists are cached.
//
// # Rendering
//
// Result marshals to a JSON object keyed by source name. FormatDigest
// renders a short markdown digest, and RenderDigestHTML converts that
// digest to HTML with goldmark.
package news
