// Package scraper provides HTTP harvesting and HTML extraction for match detail pages.
//
// The scraper resolves the listing page into a set of match detail links, fans out
// over them with a bounded worker pool, and extracts each page into a match.Record
// using layered fallback heuristics: the upstream markup varies between structured
// info blocks and loose label/value text, so every field group tries an ordered
// list of strategies and keeps the first non-empty result.
package scraper
