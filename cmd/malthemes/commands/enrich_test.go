package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mik2003/malthemes/internal/cache"
	"github.com/mik2003/malthemes/internal/output"
)

type fakeLinkSearcher struct {
	calls []string // "query|suffix" in call order
	urls  []string
	err   error
}

func (f *fakeLinkSearcher) Search(query, suffix string) ([]string, error) {
	f.calls = append(f.calls, query+"|"+suffix)
	return f.urls, f.err
}

type fakeTrackFinder struct {
	uris  map[string]string
	calls int
	err   error
}

func (f *fakeTrackFinder) TrackURI(_ context.Context, name, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.uris[name], nil
}

func sampleDocument() output.Document {
	return output.Document{
		Username: "spike",
		Anime: []output.AnimeDoc{
			{
				Title: "Cowboy Bebop",
				OpeningThemes: []output.ThemeDoc{
					{Index: "1", Name: "Tank!", Artist: "Seatbelts"},
				},
				EndingThemes: []output.ThemeDoc{
					{Index: "1", Name: "The Real Folk Blues", Artist: "Seatbelts"},
				},
			},
		},
	}
}

func TestEnrichYouTube_SuffixPerGroup(t *testing.T) {
	doc := sampleDocument()
	searcher := &fakeLinkSearcher{urls: []string{"https://www.youtube.com/watch?v=abcdefghijk"}}

	enrichYouTube(context.Background(), &doc, searcher)

	want := []string{
		"Tank! Seatbelts|OP",
		"The Real Folk Blues Seatbelts|ED",
	}
	if len(searcher.calls) != len(want) {
		t.Fatalf("searches = %q, want %q", searcher.calls, want)
	}
	for i := range want {
		if searcher.calls[i] != want[i] {
			t.Errorf("search %d = %q, want %q", i, searcher.calls[i], want[i])
		}
	}

	opening := doc.Anime[0].OpeningThemes[0]
	if !strings.HasSuffix(opening.YTQuery, "+OP") {
		t.Errorf("opening query %q missing OP suffix", opening.YTQuery)
	}
	if opening.YTURL != "https://www.youtube.com/watch?v=abcdefghijk" {
		t.Errorf("opening url = %q", opening.YTURL)
	}
	if ending := doc.Anime[0].EndingThemes[0]; !strings.HasSuffix(ending.YTQuery, "+ED") {
		t.Errorf("ending query %q missing ED suffix", ending.YTQuery)
	}
}

func TestEnrichYouTube_SearchFailureKeepsQuery(t *testing.T) {
	doc := sampleDocument()
	searcher := &fakeLinkSearcher{err: errors.New("blocked")}

	enrichYouTube(context.Background(), &doc, searcher)

	song := doc.Anime[0].OpeningThemes[0]
	if song.YTQuery == "" {
		t.Error("query URL should be set even when the search fails")
	}
	if song.YTURL != "" {
		t.Errorf("url = %q, want empty after failed search", song.YTURL)
	}
}

func TestEnrichSpotify_ResolvesAndCaches(t *testing.T) {
	store := cache.New(t.TempDir())
	finder := &fakeTrackFinder{uris: map[string]string{
		"Tank!":               "spotify:track:tank",
		"The Real Folk Blues": "spotify:track:blues",
	}}

	doc := sampleDocument()
	enrichSpotify(context.Background(), &doc, finder, store)

	if got := doc.Anime[0].OpeningThemes[0].SpotifyURI; got != "spotify:track:tank" {
		t.Errorf("opening uri = %q", got)
	}
	if got := doc.Anime[0].EndingThemes[0].SpotifyURI; got != "spotify:track:blues" {
		t.Errorf("ending uri = %q", got)
	}
	if finder.calls != 2 {
		t.Fatalf("finder calls = %d, want 2", finder.calls)
	}

	// A second pass must come entirely from the cache, even with a finder
	// that would now fail.
	doc = sampleDocument()
	broken := &fakeTrackFinder{err: errors.New("rate limited")}
	enrichSpotify(context.Background(), &doc, broken, store)

	if broken.calls != 0 {
		t.Errorf("finder calls on cached run = %d, want 0", broken.calls)
	}
	if got := doc.Anime[0].OpeningThemes[0].SpotifyURI; got != "spotify:track:tank" {
		t.Errorf("cached opening uri = %q", got)
	}
}

func TestEnrichSpotify_MissIsCachedToo(t *testing.T) {
	store := cache.New(t.TempDir())

	doc := sampleDocument()
	finder := &fakeTrackFinder{}
	enrichSpotify(context.Background(), &doc, finder, store)

	doc = sampleDocument()
	second := &fakeTrackFinder{}
	enrichSpotify(context.Background(), &doc, second, store)

	if second.calls != 0 {
		t.Errorf("finder calls after cached misses = %d, want 0", second.calls)
	}
	if got := doc.Anime[0].OpeningThemes[0].SpotifyURI; got != "" {
		t.Errorf("uri = %q, want empty for a cached miss", got)
	}
}

func TestEnrichSpotify_LeavesYouTubeFieldsEmpty(t *testing.T) {
	store := cache.New(t.TempDir())
	finder := &fakeTrackFinder{uris: map[string]string{"Tank!": "spotify:track:tank"}}

	doc := sampleDocument()
	enrichSpotify(context.Background(), &doc, finder, store)

	song := doc.Anime[0].OpeningThemes[0]
	if song.YTQuery != "" || song.YTURL != "" {
		t.Errorf("youtube fields set on spotify path: query=%q url=%q", song.YTQuery, song.YTURL)
	}
}
