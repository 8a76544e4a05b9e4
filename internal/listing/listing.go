// Package listing discovers the entries of a user's anime list from the
// MyAnimeList listing page. The page populates itself through scroll-triggered
// lazy loading, so discovery needs a rendering session rather than a plain
// HTTP fetch.
package listing

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mik2003/malthemes/internal/browser"
	"github.com/mik2003/malthemes/internal/logger"
	"github.com/mik2003/malthemes/internal/markup"
)

// Entry is one discovered anime list row: the relative detail URL and the
// display title.
type Entry struct {
	URL   string
	Title string
}

// Config holds crawler configuration.
type Config struct {
	// BaseURL is the listing URL template with one %s verb for the username.
	// The default filters to completed entries, newest first.
	BaseURL string

	// Scrolls is the number of scroll-and-settle cycles. This is a heuristic,
	// not completion detection: it neither notices "no more content" nor
	// adapts to slow networks.
	Scrolls int

	// Settle is the fixed wait after each scroll for lazy content to load.
	Settle time.Duration
}

// DefaultConfig returns the crawl parameters the site is known to work with.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://myanimelist.net/animelist/%s?order=-5&status=2",
		Scrolls: 5,
		Settle:  2 * time.Second,
	}
}

// Crawler retrieves the ordered, deduplicated entries of a user's anime list.
type Crawler struct {
	session browser.Session
	config  Config
}

// New creates a listing crawler on top of an open rendering session.
func New(session browser.Session, cfg Config) *Crawler {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Scrolls <= 0 {
		cfg.Scrolls = def.Scrolls
	}
	if cfg.Settle <= 0 {
		cfg.Settle = def.Settle
	}
	return &Crawler{session: session, config: cfg}
}

// Fetch loads the user's listing page, drives the lazy loading to the end and
// extracts all (url, title) pairs in first-seen order. An empty anime list
// yields an empty slice, not an error.
func (c *Crawler) Fetch(ctx context.Context, username string) ([]Entry, error) {
	target := fmt.Sprintf(c.config.BaseURL, url.PathEscape(username))
	logger.Debug("listing crawl starting",
		"username", username,
		"url", target,
		"scrolls", c.config.Scrolls,
		"settle", c.config.Settle)

	if err := c.session.Open(ctx, target); err != nil {
		return nil, fmt.Errorf("open listing page: %w", err)
	}

	for i := 0; i < c.config.Scrolls; i++ {
		if err := c.session.ScrollToBottom(ctx); err != nil {
			return nil, fmt.Errorf("scroll cycle %d: %w", i+1, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.config.Settle):
		}
	}

	rendered, err := c.session.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read listing markup: %w", err)
	}

	doc, err := markup.Parse(rendered)
	if err != nil {
		return nil, fmt.Errorf("parse listing markup: %w", err)
	}

	entries := extract(doc)
	logger.Debug("listing crawl complete", "username", username, "entries", len(entries))
	return entries, nil
}

// extract pulls anime links out of the rendered listing markup. Entries are
// deduplicated by exact (url, title) equality while keeping first-occurrence
// order; the rendered table repeats rows when the site re-renders sections.
func extract(doc *goquery.Document) []Entry {
	seen := make(map[Entry]bool)
	var entries []Entry

	doc.Find("a.link.sort").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.HasPrefix(href, "/anime/") {
			return
		}

		entry := Entry{URL: href, Title: strings.TrimSpace(s.Text())}
		if seen[entry] {
			return
		}
		seen[entry] = true
		entries = append(entries, entry)
	})

	return entries
}
