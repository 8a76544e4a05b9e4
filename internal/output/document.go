package output

import (
	"github.com/mik2003/malthemes/internal/catalogue"
	"github.com/mik2003/malthemes/internal/themes"
)

// Document is the JSON document the playlist front-end consumes: a top-level
// anime array whose entries carry opening_themes/ending_themes arrays. Theme
// records always have name and artist keys; other fields are omitted when
// empty.
type Document struct {
	Username string     `json:"username" yaml:"username"`
	Anime    []AnimeDoc `json:"anime" yaml:"anime"`
}

// AnimeDoc is one catalogue entry in the output document.
type AnimeDoc struct {
	ID            int        `json:"id,omitempty" yaml:"id,omitempty"`
	Title         string     `json:"title" yaml:"title"`
	Picture       string     `json:"picture,omitempty" yaml:"picture,omitempty"`
	URL           string     `json:"url,omitempty" yaml:"url,omitempty"`
	OpeningThemes []ThemeDoc `json:"opening_themes" yaml:"opening_themes"`
	EndingThemes  []ThemeDoc `json:"ending_themes" yaml:"ending_themes"`
}

// ThemeDoc is one theme song in the output document.
type ThemeDoc struct {
	Index   string `json:"index,omitempty" yaml:"index,omitempty"`
	Name    string `json:"name" yaml:"name"`
	Artist  string `json:"artist" yaml:"artist"`
	Episode string `json:"episode,omitempty" yaml:"episode,omitempty"`
	YTQuery    string `json:"yt_query,omitempty" yaml:"yt_query,omitempty"`
	YTURL      string `json:"yt_url,omitempty" yaml:"yt_url,omitempty"`
	SpotifyURI string `json:"spotify_uri,omitempty" yaml:"spotify_uri,omitempty"`
}

// NewDocument maps a catalogue into the front-end document. Theme arrays are
// always present, even when empty, because the consumer indexes into them
// unconditionally.
func NewDocument(cat *catalogue.Catalogue) Document {
	doc := Document{
		Username: cat.Username,
		Anime:    make([]AnimeDoc, 0, len(cat.Anime)),
	}
	for _, anime := range cat.Anime {
		doc.Anime = append(doc.Anime, AnimeDoc{
			ID:            anime.ID,
			Title:         anime.Title,
			Picture:       anime.Picture,
			URL:           anime.URL,
			OpeningThemes: themeDocs(anime.Openings),
			EndingThemes:  themeDocs(anime.Endings),
		})
	}
	return doc
}

func themeDocs(songs []themes.Song) []ThemeDoc {
	docs := make([]ThemeDoc, 0, len(songs))
	for _, s := range songs {
		docs = append(docs, ThemeDoc{
			Index:   s.Index,
			Name:    s.Name,
			Artist:  s.Artist,
			Episode: s.Episode,
		})
	}
	return docs
}
