// Package malapi talks to the official MyAnimeList v2 API. It is the
// alternative to browser scraping when an API client ID is available, and it
// supplies the cover pictures and numeric ids the listing page does not
// expose.
package malapi

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mik2003/malthemes/internal/logger"
)

const (
	defaultBaseURL = "https://api.myanimelist.net/v2"
	pageLimit      = 100
)

// Config holds API client configuration.
type Config struct {
	// ClientID is sent as the X-MAL-CLIENT-ID header on every request.
	ClientID string

	// BaseURL overrides the API origin, mainly for tests.
	BaseURL string

	Timeout time.Duration
}

// Client is a MyAnimeList v2 API client.
type Client struct {
	http *resty.Client
}

// NewClient creates an authenticated API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("X-MAL-CLIENT-ID", cfg.ClientID).
		SetTimeout(cfg.Timeout)

	return &Client{http: http}
}

// ListEntry is one anime list row from the API: numeric id and title.
type ListEntry struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type animeListPage struct {
	Data []struct {
		Node ListEntry `json:"node"`
	} `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// AnimeList retrieves the user's completed anime list in list-update order,
// following the API's paging links until exhausted.
func (c *Client) AnimeList(ctx context.Context, username string) ([]ListEntry, error) {
	next := fmt.Sprintf("/users/%s/animelist?offset=0&status=completed&sort=list_updated_at&limit=%d",
		url.PathEscape(username), pageLimit)

	var entries []ListEntry
	for next != "" {
		logger.Debug("animelist page request", "username", username, "url", next)

		var page animeListPage
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(&page).
			Get(next)
		if err != nil {
			return nil, fmt.Errorf("animelist request for %s: %w", username, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("animelist request for %s: %s", username, resp.Status())
		}

		for _, item := range page.Data {
			entries = append(entries, item.Node)
		}

		// paging.next is an absolute URL; resty follows it as-is.
		next = page.Paging.Next
	}

	logger.Debug("animelist retrieved", "username", username, "entries", len(entries))
	return entries, nil
}

// Picture is the API's main_picture object.
type Picture struct {
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// ThemeText is one raw theme-song line from the API.
type ThemeText struct {
	ID      int    `json:"id"`
	AnimeID int    `json:"anime_id"`
	Text    string `json:"text"`
}

// Anime is the per-anime API response with the fields this pipeline uses.
type Anime struct {
	ID            int         `json:"id"`
	Title         string      `json:"title"`
	MainPicture   Picture     `json:"main_picture"`
	OpeningThemes []ThemeText `json:"opening_themes"`
	EndingThemes  []ThemeText `json:"ending_themes"`
}

// PictureURL returns the medium picture, falling back to large.
func (a *Anime) PictureURL() string {
	if a.MainPicture.Medium != "" {
		return a.MainPicture.Medium
	}
	return a.MainPicture.Large
}

// AnimeByID retrieves one anime with its theme-song texts and cover picture.
func (c *Client) AnimeByID(ctx context.Context, id int) (*Anime, error) {
	var anime Anime
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&anime).
		SetQueryParam("fields", "opening_themes,ending_themes,main_picture").
		Get("/anime/" + strconv.Itoa(id))
	if err != nil {
		return nil, fmt.Errorf("anime %d request: %w", id, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("anime %d request: %s", id, resp.Status())
	}
	return &anime, nil
}

var detailPathID = regexp.MustCompile(`^/anime/(\d+)(?:/|$)`)

// IDFromPath extracts the numeric anime id from a relative detail URL such as
// "/anime/1/Cowboy_Bebop". The second return is false when the path does not
// carry one.
func IDFromPath(detailPath string) (int, bool) {
	m := detailPathID.FindStringSubmatch(detailPath)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}
