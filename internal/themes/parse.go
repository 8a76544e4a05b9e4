// Package themes scrapes and parses the theme-song sections of a MyAnimeList
// anime page.
package themes

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mik2003/malthemes/internal/markup"
)

// Sub-element markers inside one song row. The layout is positional: when the
// index marker is absent the song name moves up to the first content node.
const (
	indexMarker   = "span.theme-song-index"
	artistMarker  = "span.theme-song-artist"
	episodeMarker = "span.theme-song-episode"
)

// The artist marker text starts with a fixed "by " connector.
const artistPrefixLen = len("by ")

// Song is one opening or ending theme. All fields are opaque strings; only
// Index is guaranteed non-empty (it defaults to "1" for the common case of a
// single theme song without an explicit index marker).
type Song struct {
	Index   string
	Name    string
	Artist  string
	Episode string
}

// ParseFragment turns one song row into a Song. It is total: missing markers
// fall back to defaults and the worst case is a record with empty optional
// fields.
func ParseFragment(sel *goquery.Selection) Song {
	song := Song{Index: "1"}
	if sel == nil {
		return song
	}

	namePos := 0
	if idx := sel.Find(indexMarker).First(); idx.Length() > 0 {
		if text := strings.TrimSpace(idx.Text()); text != "" {
			song.Index = text
		}
		namePos = 1
	}

	if node, ok := markup.ContentNode(sel, namePos); ok {
		song.Name = strings.Trim(markup.NodeText(node), `" `)
	}

	if artist := sel.Find(artistMarker).First(); artist.Length() > 0 {
		text := strings.TrimSpace(artist.Text())
		if len(text) >= artistPrefixLen {
			song.Artist = text[artistPrefixLen:]
		}
	}

	if episode := sel.Find(episodeMarker).First(); episode.Length() > 0 {
		song.Episode = strings.TrimSpace(episode.Text())
	}

	return song
}
