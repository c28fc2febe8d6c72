package scraper

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rbenali/matchmirror/internal/fetch"
	"github.com/rbenali/matchmirror/internal/logger"
	"github.com/rbenali/matchmirror/internal/match"
)

const (
	// IndexPath is the listing page enumerating today's matches.
	IndexPath = "/ar/index"

	// PoolSize bounds concurrent detail page fetches.
	PoolSize = 20

	detailTimeout = 10 * time.Second
	indexTimeout  = 15 * time.Second
)

var matchLinkRe = regexp.MustCompile(`/match/(\d+)`)

// Fetcher fetches raw markup for a URL. Satisfied by *fetch.Client.
type Fetcher interface {
	Get(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

// Scraper harvests match records from the upstream site.
type Scraper struct {
	fetcher Fetcher
	baseURL string
	workers int
}

// New creates a Scraper over the given fetcher.
func New(f Fetcher) *Scraper {
	return &Scraper{
		fetcher: f,
		baseURL: fetch.BaseURL,
		workers: PoolSize,
	}
}

// ResolveListing fetches the index page and returns the distinct match detail
// links found on it, in first-seen document order. The order only matters as
// the tiebreaker the aggregator preserves for equal championships.
func (s *Scraper) ResolveListing(ctx context.Context) ([]string, error) {
	body, err := s.fetcher.Get(ctx, s.baseURL+IndexPath, indexTimeout)
	if err != nil {
		return nil, fmt.Errorf("fetching index page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing index page: %w", err)
	}

	seen := make(map[string]bool)
	links := make([]string, 0)
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !matchLinkRe.MatchString(href) {
			return
		}
		if seen[href] {
			return
		}
		seen[href] = true
		links = append(links, href)
	})

	return links, nil
}

// Harvest fetches and extracts every link with at most PoolSize in-flight
// requests. Each worker writes only its own result slot, so discovery order
// survives the fan-out; failed pages simply leave their slot empty. All links
// are attempted every cycle.
func (s *Scraper) Harvest(ctx context.Context, links []string) []match.Record {
	slots := make([]*match.Record, len(links))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, link := range links {
		wg.Add(1)
		go func(i int, link string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			slots[i] = s.harvestOne(ctx, link)
		}(i, link)
	}
	wg.Wait()

	records := make([]match.Record, 0, len(links))
	for _, r := range slots {
		if r != nil {
			records = append(records, *r)
		}
	}
	logger.AddCounter("pages.dropped", int64(len(links)-len(records)))
	return records
}

// harvestOne fetches and extracts a single detail page. Any failure, including
// a panic inside extraction, yields nil: one bad page never aborts the batch.
func (s *Scraper) harvestOne(ctx context.Context, link string) (rec *match.Record) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("match page extraction panicked", logger.Fields{"link": link, "panic": fmt.Sprint(r)})
			rec = nil
		}
	}()

	pageURL := link
	if !strings.HasPrefix(link, "http") {
		pageURL = s.baseURL + link
	}

	start := time.Now()
	body, err := s.fetcher.Get(ctx, pageURL, detailTimeout)
	logger.RecordTiming("fetch.detail", time.Since(start))
	if err != nil {
		logger.Warn("match page fetch failed", logger.Fields{"url": pageURL, "error": err.Error()})
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		logger.Warn("match page parse failed", logger.Fields{"url": pageURL, "error": err.Error()})
		return nil
	}

	r := Extract(doc, pageURL)
	return &r
}
