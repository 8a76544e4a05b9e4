package themes

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mik2003/malthemes/internal/browser"
	"github.com/mik2003/malthemes/internal/logger"
	"github.com/mik2003/malthemes/internal/markup"
)

const siteOrigin = "https://myanimelist.net"

// Theme-song container classes on the anime page. The misspelled "opnening"
// is the site's own class name, not ours.
const (
	openingContainer = "div.theme-songs.js-theme-songs.opnening"
	endingContainer  = "div.theme-songs.js-theme-songs.ending"
	songRow          = `td[width="84%"]`
)

// DefaultSettle is the fixed wait after navigation for the page's client-side
// rendering to fill in the theme-song sections.
const DefaultSettle = 2 * time.Second

// Groups holds the raw song-row fragments of one anime page, split into
// opening and ending themes in document order.
type Groups struct {
	Openings []*goquery.Selection
	Endings  []*goquery.Selection
}

// Scraper renders anime detail pages and extracts their theme-song fragments.
type Scraper struct {
	session browser.Session
	settle  time.Duration
}

// NewScraper creates a detail scraper on top of an open rendering session.
func NewScraper(session browser.Session, settle time.Duration) *Scraper {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Scraper{session: session, settle: settle}
}

// Fetch renders the anime page at the given relative path (e.g.
// "/anime/1/Cowboy_Bebop") and returns its opening and ending song fragments.
// A page without one or both containers yields empty groups, not an error;
// navigation failures are returned for the caller to recover per item.
func (s *Scraper) Fetch(ctx context.Context, detailPath string) (Groups, error) {
	target := siteOrigin + (&url.URL{Path: detailPath}).EscapedPath()
	logger.Debug("detail scrape starting", "url", target)

	if err := s.session.Open(ctx, target); err != nil {
		return Groups{}, fmt.Errorf("open detail page: %w", err)
	}

	select {
	case <-ctx.Done():
		return Groups{}, ctx.Err()
	case <-time.After(s.settle):
	}

	rendered, err := s.session.HTML(ctx)
	if err != nil {
		return Groups{}, fmt.Errorf("read detail markup: %w", err)
	}

	doc, err := markup.Parse(rendered)
	if err != nil {
		return Groups{}, fmt.Errorf("parse detail markup: %w", err)
	}

	groups := Groups{
		Openings: fragments(doc, openingContainer),
		Endings:  fragments(doc, endingContainer),
	}
	logger.Debug("detail scrape complete",
		"url", target,
		"openings", len(groups.Openings),
		"endings", len(groups.Endings))
	return groups, nil
}

// fragments returns the song rows of the first matching container, in
// document order. A missing container yields nil.
func fragments(doc *goquery.Document, container string) []*goquery.Selection {
	var rows []*goquery.Selection
	doc.Find(container).First().Find(songRow).Each(func(_ int, row *goquery.Selection) {
		rows = append(rows, row)
	})
	return rows
}
