// Package ingest fetches raw entries from RSS/Atom feed sources and filters
// them against the seen-set so each article is admitted exactly once across
// all runs.
package ingest

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

// RawEntry is one feed entry as it came off the wire, before validation.
// Every field is optional at this point.
type RawEntry struct {
	Title     string
	Link      string
	Published string
	Updated   string
	Summary   string
}

// Article converts the raw entry into an Article: identity fields trimmed,
// timestamp resolved with the explicit published-then-updated fallback,
// missing fields left as empty text.
func (e RawEntry) Article() model.Article {
	published := e.Published
	if published == "" {
		published = e.Updated
	}
	return model.Article{
		Title:     strings.TrimSpace(e.Title),
		Link:      strings.TrimSpace(e.Link),
		Published: published,
		Summary:   e.Summary,
	}
}

// SourceFetcher retrieves the raw entries of a single feed source. Failures
// surface as an error the filter catches per source.
type SourceFetcher interface {
	FetchEntries(ctx context.Context, feedURL string) ([]RawEntry, error)
}

// FetchOptions configures the HTTP feed fetcher.
type FetchOptions struct {
	UserAgent    string
	Timeout      time.Duration
	PerHostRate  rate.Limit
	PerHostBurst int
}

// FeedFetcher implements SourceFetcher over HTTP with gofeed parsing and
// per-host rate limiting.
type FeedFetcher struct {
	client *http.Client
	opts   FetchOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFeedFetcher creates a FeedFetcher with the given options.
func NewFeedFetcher(opts FetchOptions) *FeedFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "hermes-cli/1.0"
	}
	if opts.PerHostRate == 0 {
		opts.PerHostRate = 2
	}
	if opts.PerHostBurst == 0 {
		opts.PerHostBurst = 2
	}
	return &FeedFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *FeedFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.opts.PerHostRate, f.opts.PerHostBurst)
		f.limiters[host] = lim
	}
	return lim
}

// FetchEntries fetches and parses one feed. A single best-effort attempt:
// retry policy for the whole pipeline belongs to the external scheduler.
func (f *FeedFetcher) FetchEntries(ctx context.Context, feedURL string) ([]RawEntry, error) {
	if err := f.limiterFor(feedURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "ingest: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: create request for %s", feedURL)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: fetch %s", feedURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("ingest: http %d from %s", resp.StatusCode, feedURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", feedURL)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: parse %s", feedURL)
	}

	entries := make([]RawEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entries = append(entries, RawEntry{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.Published,
			Updated:   item.Updated,
			Summary:   item.Description,
		})
	}
	return entries, nil
}
