package malapi

import (
	"regexp"

	"github.com/mik2003/malthemes/internal/themes"
)

// The API serves each theme as a single text line of the shape
//
//	#2: "Song Name (alt)" by Artist Name (eps 1-11)
//
// where the index, artist and episode parts are all optional. The artist is
// matched lazily so a trailing episode range is not swallowed even when the
// artist name itself contains parentheses.
var themeTextRE = regexp.MustCompile(
	`(?:#(?P<index>\d+):)?\s*"(?P<name>[^"]+)"(?:\s+by\s+(?P<artist>.+?))?\s*(?:\((?P<episode>eps?[ .][^)]*)\))?\s*$`)

// ParseThemeText parses one API theme line into a Song. Lines that do not
// match the expected shape yield a Song with "Unknown" name and artist, so
// the caller never loses a theme entirely.
func ParseThemeText(text string) themes.Song {
	m := themeTextRE.FindStringSubmatch(text)
	if m == nil {
		return themes.Song{Index: "1", Name: "Unknown", Artist: "Unknown"}
	}

	song := themes.Song{Index: "1"}
	for i, name := range themeTextRE.SubexpNames() {
		if m[i] == "" {
			continue
		}
		switch name {
		case "index":
			song.Index = m[i]
		case "name":
			song.Name = m[i]
		case "artist":
			song.Artist = m[i]
		case "episode":
			song.Episode = m[i]
		}
	}
	return song
}
