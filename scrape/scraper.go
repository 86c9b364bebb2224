package scrape

import (
	"context"
	"log/slog"
	"time"
)

// Scraper ties fetching, caching, and extraction together behind a single
// page-level call.
type Scraper struct {
	fetcher   *Fetcher
	cache     *Cache
	extractor *Extractor
	logger    *slog.Logger
}

// NewScraper assembles a scraper from its parts. A nil logger falls back to
// slog.Default.
func NewScraper(fetcher *Fetcher, cache *Cache, extractor *Extractor, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scraper{
		fetcher:   fetcher,
		cache:     cache,
		extractor: extractor,
		logger:    logger,
	}
}

// FetchPage returns the extracted page at url. Pages are cached by URL with
// links always collected, so a content-only call never poisons the cache for
// a later links-requested call. withLinks controls only whether the returned
// copy carries the link list.
func (s *Scraper) FetchPage(ctx context.Context, url string, withLinks bool) (*Page, error) {
	if page, ok := s.cache.Get(url); ok {
		s.logger.Debug("Page cache hit", "url", url)
		return pageCopy(page, withLinks), nil
	}

	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	page, err := s.extractor.Extract(url, body)
	if err != nil {
		return nil, err
	}
	page.FetchedAt = time.Now()

	s.cache.Put(url, page)
	s.logger.Debug("Page fetched",
		"url", url,
		"title", page.Title,
		"links", len(page.Links),
		"content_length", len(page.Content))

	return pageCopy(page, withLinks), nil
}

// ClearCache drops all cached pages.
func (s *Scraper) ClearCache() {
	s.cache.Clear()
}

// pageCopy copies a cached page for handing to callers. The link list is
// copied when requested and dropped otherwise, so callers cannot mutate the
// cached entry.
func pageCopy(page *Page, withLinks bool) *Page {
	copied := *page
	if withLinks {
		copied.Links = append([]string(nil), page.Links...)
	} else {
		copied.Links = nil
	}
	return &copied
}
