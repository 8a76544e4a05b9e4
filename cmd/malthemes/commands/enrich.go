package commands

import (
	"context"
	"crypto/sha1"
	"fmt"
	"time"

	"github.com/mik2003/malthemes/internal/cache"
	"github.com/mik2003/malthemes/internal/logger"
	"github.com/mik2003/malthemes/internal/output"
	"github.com/mik2003/malthemes/internal/youtube"
)

// enrichDelay spaces out external lookups while walking the document.
const enrichDelay = 200 * time.Millisecond

// linkSearcher is satisfied by youtube.Searcher.
type linkSearcher interface {
	Search(query, suffix string) ([]string, error)
}

// trackFinder is satisfied by spotify.Client.
type trackFinder interface {
	TrackURI(ctx context.Context, name, artist, animeTitle string) (string, error)
}

// themeGroup pairs one theme list with the search suffix for its kind.
type themeGroup struct {
	songs  []output.ThemeDoc
	suffix string
}

func themeGroups(anime *output.AnimeDoc) []themeGroup {
	return []themeGroup{
		{songs: anime.OpeningThemes, suffix: "OP"},
		{songs: anime.EndingThemes, suffix: "ED"},
	}
}

// enrichYouTube adds a search-query URL and the first search hit to every
// theme song, tagging queries with the group's OP/ED suffix. A failed search
// only costs that song's link.
func enrichYouTube(ctx context.Context, doc *output.Document, searcher linkSearcher) {
	for a := range doc.Anime {
		for _, group := range themeGroups(&doc.Anime[a]) {
			for t := range group.songs {
				if ctx.Err() != nil {
					return
				}

				query := group.songs[t].Name + " " + group.songs[t].Artist
				group.songs[t].YTQuery = youtube.QueryURL(query, group.suffix)

				urls, err := searcher.Search(query, group.suffix)
				if err != nil {
					logger.Warn("youtube search failed", "query", query, "error", err)
					continue
				}
				if len(urls) > 0 {
					group.songs[t].YTURL = urls[0]
				}

				time.Sleep(enrichDelay)
			}
		}
	}
}

// enrichSpotify resolves every theme song to a Spotify track URI. Resolved
// URIs, including misses, are cached so re-runs skip the search; a failed
// lookup only costs that song's link. YouTube fields stay empty on this path.
func enrichSpotify(ctx context.Context, doc *output.Document, finder trackFinder, store *cache.Cache) {
	for a := range doc.Anime {
		title := doc.Anime[a].Title
		for _, group := range themeGroups(&doc.Anime[a]) {
			for t := range group.songs {
				if ctx.Err() != nil {
					return
				}
				song := &group.songs[t]

				key := trackKey(title, song.Name, song.Artist)
				var uri string
				if hit, err := store.Get("spotify", key, &uri); err == nil && hit {
					song.SpotifyURI = uri
					continue
				}

				uri, err := finder.TrackURI(ctx, song.Name, song.Artist, title)
				if err != nil {
					logger.Warn("spotify lookup failed",
						"name", song.Name,
						"artist", song.Artist,
						"error", err)
					continue
				}

				song.SpotifyURI = uri
				if err := store.Put("spotify", key, uri); err != nil {
					logger.Warn("failed to cache spotify uri", "name", song.Name, "error", err)
				}

				time.Sleep(enrichDelay)
			}
		}
	}
}

// trackKey derives a filesystem-safe cache key; song and anime names are
// free text in any script.
func trackKey(animeTitle, name, artist string) string {
	sum := sha1.Sum([]byte(animeTitle + "\x00" + name + "\x00" + artist))
	return fmt.Sprintf("%x", sum)
}
