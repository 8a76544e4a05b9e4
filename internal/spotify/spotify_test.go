package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

// newTestClient starts a fake token + search API and returns a client bound
// to it. hits maps a search query to the URI it should return.
func newTestClient(t *testing.T, hits map[string]string) (*Client, *int, *int) {
	t.Helper()

	tokenRequests := 0
	searchRequests := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		id, secret, ok := r.BasicAuth()
		if !ok || id != "app-id" || secret != "app-secret" {
			t.Errorf("unexpected token credentials: %q / %q", id, secret)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse token form: %v", err)
		}
		if grant := r.PostFormValue("grant_type"); grant != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", grant)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "test-token", "expires_in": 3600}`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		searchRequests++
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer test-token", auth)
		}
		w.Header().Set("Content-Type", "application/json")

		uri, ok := hits[r.URL.Query().Get("q")]
		if !ok {
			fmt.Fprint(w, `{"tracks": {"items": []}}`)
			return
		}
		fmt.Fprintf(w, `{"tracks": {"items": [
			{"uri": %q, "name": "hit", "artists": [{"name": "someone"}]}
		]}}`, uri)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		BaseURL:      server.URL,
		TokenURL:     server.URL + "/token",
	})
	return client, &tokenRequests, &searchRequests
}

func TestTrackURI_FirstQueryHit(t *testing.T) {
	client, _, searches := newTestClient(t, map[string]string{
		"Tank! Seatbelts": "spotify:track:abc123",
	})

	uri, err := client.TrackURI(context.Background(), `"Tank!"`, "Seatbelts", "Cowboy Bebop")
	if err != nil {
		t.Fatalf("TrackURI() error = %v", err)
	}
	if uri != "spotify:track:abc123" {
		t.Errorf("uri = %q, want spotify:track:abc123", uri)
	}
	if *searches != 1 {
		t.Errorf("expected 1 search for a first-query hit, got %d", *searches)
	}
}

func TestTrackURI_FallsDownTheLadder(t *testing.T) {
	// Only the bare song name matches, so the name+artist query must miss
	// first.
	client, _, searches := newTestClient(t, map[string]string{
		"Blue": "spotify:track:blue42",
	})

	uri, err := client.TrackURI(context.Background(), "Blue", "Mai Yamane", "Cowboy Bebop")
	if err != nil {
		t.Fatalf("TrackURI() error = %v", err)
	}
	if uri != "spotify:track:blue42" {
		t.Errorf("uri = %q, want spotify:track:blue42", uri)
	}
	if *searches != 2 {
		t.Errorf("expected 2 searches, got %d", *searches)
	}
}

func TestTrackURI_NoMatchIsNotAnError(t *testing.T) {
	client, _, _ := newTestClient(t, nil)

	uri, err := client.TrackURI(context.Background(), "Obscure Song", "Nobody", "Nothing")
	if err != nil {
		t.Fatalf("TrackURI() error = %v", err)
	}
	if uri != "" {
		t.Errorf("uri = %q, want empty for no match", uri)
	}
}

func TestTrackURI_TokenIsReused(t *testing.T) {
	client, tokens, _ := newTestClient(t, nil)

	ctx := context.Background()
	if _, err := client.TrackURI(ctx, "First", "A", ""); err != nil {
		t.Fatalf("TrackURI() error = %v", err)
	}
	if _, err := client.TrackURI(ctx, "Second", "B", ""); err != nil {
		t.Fatalf("TrackURI() error = %v", err)
	}

	if *tokens != 1 {
		t.Errorf("expected a single token request, got %d", *tokens)
	}
}

func TestTrackURI_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:  server.URL,
		TokenURL: server.URL + "/token",
	})

	if _, err := client.TrackURI(context.Background(), "Tank!", "Seatbelts", ""); err == nil {
		t.Fatal("expected error on rejected token request")
	}
}

func TestSearchQueries(t *testing.T) {
	tests := []struct {
		name       string
		song       string
		artist     string
		animeTitle string
		want       []string
	}{
		{
			name:       "full ladder",
			song:       "Tank!",
			artist:     "Seatbelts",
			animeTitle: "Cowboy Bebop",
			want: []string{
				"Tank! Seatbelts",
				"Tank!",
				"Tank! Cowboy Bebop",
				"Cowboy Bebop Tank!",
			},
		},
		{
			name: "operators stripped and duplicates collapsed",
			song: `"Blue (TV size)"`,
			want: []string{"Blue TV size"},
		},
		{
			name: "empty inputs yield nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchQueries(tt.song, tt.artist, tt.animeTitle)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("searchQueries() = %q, want %q", got, tt.want)
			}
		})
	}
}
