// Package spotify resolves theme songs to Spotify track URIs through the Web
// API. It is the alternative music source to the YouTube results-page search;
// when selected, songs without a Spotify match stay without any link rather
// than falling back to YouTube.
package spotify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mik2003/malthemes/internal/logger"
)

const (
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token"

	searchLimit = 5
)

// Config holds Spotify client configuration.
type Config struct {
	// ClientID and ClientSecret authenticate the client-credentials token
	// request. Search needs no user consent, so no browser round trip.
	ClientID     string
	ClientSecret string

	// BaseURL and TokenURL override the API origins, mainly for tests.
	BaseURL  string
	TokenURL string

	Timeout time.Duration
}

// Client is a search-only Spotify Web API client. It fetches and refreshes
// its access token lazily.
type Client struct {
	http     *resty.Client
	tokenURL string
	id       string
	secret   string

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewClient creates a Spotify client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	return &Client{
		http:     http,
		tokenURL: cfg.TokenURL,
		id:       cfg.ClientID,
		secret:   cfg.ClientSecret,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a valid bearer token, requesting a new one through the
// client-credentials flow when the cached token is absent or near expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expires) {
		return c.token, nil
	}

	var tok tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.id, c.secret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&tok).
		Post(c.tokenURL)
	if err != nil {
		return "", fmt.Errorf("spotify token request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("spotify token request: %s", resp.Status())
	}

	c.token = tok.AccessToken
	// Refresh a minute early so in-flight searches never race expiry.
	c.expires = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return c.token, nil
}

type searchResponse struct {
	Tracks struct {
		Items []struct {
			URI     string `json:"uri"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"items"`
	} `json:"tracks"`
}

// TrackURI resolves one theme song to a Spotify track URI. It walks a ladder
// of progressively looser queries and returns the first hit; no match yields
// an empty string with a nil error, so a missing track costs only the link.
func (c *Client) TrackURI(ctx context.Context, name, artist, animeTitle string) (string, error) {
	for _, query := range searchQueries(name, artist, animeTitle) {
		uri, err := c.search(ctx, query)
		if err != nil {
			return "", err
		}
		if uri != "" {
			logger.Debug("spotify track found", "query", query, "uri", uri)
			return uri, nil
		}
	}
	logger.Debug("no spotify match", "name", name, "artist", artist)
	return "", nil
}

func (c *Client) search(ctx context.Context, query string) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	var result searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"q":     query,
			"type":  "track",
			"limit": fmt.Sprintf("%d", searchLimit),
		}).
		SetResult(&result).
		Get("/search")
	if err != nil {
		return "", fmt.Errorf("spotify search %q: %w", query, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("spotify search %q: %s", query, resp.Status())
	}

	if len(result.Tracks.Items) == 0 {
		return "", nil
	}
	return result.Tracks.Items[0].URI, nil
}

// searchQueries builds the ordered, deduplicated ladder of search strings for
// one song, from most to least specific.
func searchQueries(name, artist, animeTitle string) []string {
	name = cleanQuery(name)
	artist = cleanQuery(artist)
	animeTitle = cleanQuery(animeTitle)

	candidates := []string{
		strings.TrimSpace(name + " " + artist),
		name,
		strings.TrimSpace(name + " " + animeTitle),
		strings.TrimSpace(animeTitle + " " + name),
	}

	seen := make(map[string]bool)
	var queries []string
	for _, q := range candidates {
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		queries = append(queries, q)
	}
	return queries
}

// cleanQuery strips characters Spotify's search treats as operators.
func cleanQuery(text string) string {
	replacer := strings.NewReplacer(`"`, "", `\`, "", "(", "", ")", "")
	return strings.TrimSpace(replacer.Replace(text))
}
