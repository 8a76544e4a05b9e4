// Package youtube locates theme songs on YouTube through the public search
// results page. No API key is needed; video ids are pattern-matched out of
// the response body.
package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/mik2003/malthemes/internal/logger"
)

const (
	resultsURL = "https://www.youtube.com/results?search_query="
	watchURL   = "https://www.youtube.com/watch?v="
)

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var watchIDRE = regexp.MustCompile(`watch\?v=(\S{11})`)

// Searcher performs YouTube searches over plain HTTP.
type Searcher struct {
	userAgent string
	timeout   time.Duration
}

// NewSearcher creates a searcher with sensible defaults.
func NewSearcher() *Searcher {
	return &Searcher{
		userAgent: defaultUserAgent,
		timeout:   30 * time.Second,
	}
}

// QueryURL returns the results-page URL for a query with an optional suffix
// keyword ("OP"/"ED").
func QueryURL(query, suffix string) string {
	keyword := url.QueryEscape(query)
	if suffix != "" {
		keyword += "+" + suffix
	}
	return resultsURL + keyword
}

// Search fetches the results page for the query and returns watch URLs in
// result order, deduplicated by video id.
func (s *Searcher) Search(query, suffix string) ([]string, error) {
	target := QueryURL(query, suffix)
	logger.Debug("youtube search", "url", target)

	c := colly.NewCollector(colly.UserAgent(s.userAgent))
	c.SetRequestTimeout(s.timeout)

	var body []byte
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("youtube search %q: %w", query, err)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("youtube search %q: %w", query, fetchErr)
	}

	urls := WatchURLs(string(body))
	logger.Debug("youtube search complete", "query", query, "results", len(urls))
	return urls, nil
}

// WatchURLs extracts watch URLs from a results-page body, keeping first-seen
// order and dropping duplicate video ids.
func WatchURLs(body string) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, m := range watchIDRE.FindAllStringSubmatch(body, -1) {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		urls = append(urls, watchURL+id)
	}
	return urls
}
