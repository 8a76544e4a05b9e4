package malapi

import (
	"reflect"
	"testing"

	"github.com/mik2003/malthemes/internal/themes"
)

func TestParseThemeText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want themes.Song
	}{
		{
			name: "full line with index, artist and episode",
			text: `#1: "Sora no Mori de (空の森で)" by Mami Kawada (川田まみ) (eps 1-11)`,
			want: themes.Song{
				Index:   "1",
				Name:    "Sora no Mori de (空の森で)",
				Artist:  "Mami Kawada (川田まみ)",
				Episode: "eps 1-11",
			},
		},
		{
			name: "no index defaults to 1",
			text: `"Tank!" by Seatbelts (eps 1-25)`,
			want: themes.Song{Index: "1", Name: "Tank!", Artist: "Seatbelts", Episode: "eps 1-25"},
		},
		{
			name: "no artist",
			text: `"Rouge no Dengon" (eps 1-2)`,
			want: themes.Song{Index: "1", Name: "Rouge no Dengon", Episode: "eps 1-2"},
		},
		{
			name: "no episode",
			text: `#2: "Blue" by Mai Yamane`,
			want: themes.Song{Index: "2", Name: "Blue", Artist: "Mai Yamane"},
		},
		{
			name: "name only",
			text: `"Yasashisa ni Tsutsumareta nara"`,
			want: themes.Song{Index: "1", Name: "Yasashisa ni Tsutsumareta nara"},
		},
		{
			name: "unparseable line falls back to Unknown",
			text: `no quotes anywhere`,
			want: themes.Song{Index: "1", Name: "Unknown", Artist: "Unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseThemeText(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseThemeText(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIDFromPath(t *testing.T) {
	tests := []struct {
		path   string
		wantID int
		wantOK bool
	}{
		{"/anime/1/Cowboy_Bebop", 1, true},
		{"/anime/49458/Kono_Subarashii_Sekai_ni_Shukufuku_wo_3", 49458, true},
		{"/anime/164", 164, true},
		{"/manga/2/Berserk", 0, false},
		{"/anime/abc/Nope", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		id, ok := IDFromPath(tt.path)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("IDFromPath(%q) = (%d, %v), want (%d, %v)",
				tt.path, id, ok, tt.wantID, tt.wantOK)
		}
	}
}
