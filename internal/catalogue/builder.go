// Package catalogue assembles the full per-user theme-song catalogue by
// orchestrating the listing crawler and the per-anime detail scraper.
package catalogue

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/mik2003/malthemes/internal/browser"
	"github.com/mik2003/malthemes/internal/listing"
	"github.com/mik2003/malthemes/internal/logger"
	"github.com/mik2003/malthemes/internal/themes"
)

// Anime is one catalogue entry. Entries are immutable once appended; theme
// slices are owned exclusively by the entry.
type Anime struct {
	// ID is the numeric MyAnimeList id, when known (0 otherwise).
	ID int

	// URL is the relative detail URL the entry was discovered under.
	URL string

	Title string

	// Picture is the cover image URL, filled by API enrichment when
	// configured.
	Picture string

	Openings []themes.Song
	Endings  []themes.Song
}

// Catalogue is the complete result of one run: the user identity and the
// entries in discovery order.
type Catalogue struct {
	Username string
	Anime    []Anime
}

// ListFetcher discovers the ordered entries of a user's anime list.
type ListFetcher interface {
	Fetch(ctx context.Context, username string) ([]listing.Entry, error)
}

// ThemeFetcher retrieves the raw theme-song fragments of one anime page.
type ThemeFetcher interface {
	Fetch(ctx context.Context, detailPath string) (themes.Groups, error)
}

// Builder builds catalogues one anime at a time, sharing a single rendering
// session between the listing crawl and every detail fetch.
type Builder struct {
	list    ListFetcher
	details ThemeFetcher
}

// NewBuilder creates a catalogue builder.
func NewBuilder(list ListFetcher, details ThemeFetcher) *Builder {
	return &Builder{list: list, details: details}
}

// Build crawls the user's anime list once, then fetches and parses each
// entry's theme songs sequentially in discovery order. A failed detail fetch
// degrades to an entry with empty theme lists; only a dead session or a
// cancelled context aborts the run. The returned catalogue is always complete
// with respect to the discovered list.
func (b *Builder) Build(ctx context.Context, username string) (*Catalogue, error) {
	entries, err := b.list.Fetch(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetch anime list for %s: %w", username, err)
	}

	cat := &Catalogue{
		Username: username,
		Anime:    make([]Anime, 0, len(entries)),
	}
	total := len(entries)
	logger.Info("anime list discovered", "username", username, "count", total)

	for i, entry := range entries {
		anime := Anime{URL: entry.URL, Title: entry.Title}

		groups, err := b.details.Fetch(ctx, entry.URL)
		switch {
		case err == nil:
			anime.Openings = parseAll(groups.Openings)
			anime.Endings = parseAll(groups.Endings)
		case errors.Is(err, browser.ErrSessionClosed), ctx.Err() != nil:
			return nil, fmt.Errorf("session failed while fetching %q: %w", entry.Title, err)
		default:
			// Entries are independent; a missing song list must not
			// invalidate the rest of the catalogue.
			logger.Warn("theme fetch failed, keeping entry with no themes",
				"title", entry.Title,
				"url", entry.URL,
				"error", err)
		}

		cat.Anime = append(cat.Anime, anime)
		logger.Info("catalogue progress",
			"current", i+1,
			"total", total,
			"title", entry.Title)
	}

	return cat, nil
}

func parseAll(rows []*goquery.Selection) []themes.Song {
	if len(rows) == 0 {
		return nil
	}
	songs := make([]themes.Song, 0, len(rows))
	for _, row := range rows {
		songs = append(songs, themes.ParseFragment(row))
	}
	return songs
}
