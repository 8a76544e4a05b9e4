package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mik2003/malthemes/internal/browser"
	"github.com/mik2003/malthemes/internal/cache"
	"github.com/mik2003/malthemes/internal/catalogue"
	"github.com/mik2003/malthemes/internal/listing"
	"github.com/mik2003/malthemes/internal/logger"
	"github.com/mik2003/malthemes/internal/malapi"
	"github.com/mik2003/malthemes/internal/output"
	"github.com/mik2003/malthemes/internal/spotify"
	"github.com/mik2003/malthemes/internal/themes"
	"github.com/mik2003/malthemes/internal/youtube"
)

// scrapeConfig is the validated run configuration assembled from flags,
// environment and config file.
type scrapeConfig struct {
	Username string `validate:"required"`
	Source   string `validate:"oneof=scrape api"`
	Format   string `validate:"oneof=json jsonl yaml"`
	Output   string
	Scrolls  int           `validate:"min=1"`
	Settle   time.Duration `validate:"min=0"`
	CacheDir string
	ClientID string `validate:"required_if=Source api"`
	Timeout  time.Duration

	// YouTube and Spotify are exclusive music sources: in Spotify mode a
	// song without a match stays without any link instead of falling back.
	YouTube       bool
	Spotify       bool   `validate:"excluded_with=YouTube"`
	SpotifyID     string `validate:"required_if=Spotify true"`
	SpotifySecret string `validate:"required_if=Spotify true"`
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Build the theme-song catalogue for a user",
	Long: `Scrape builds the full opening/ending theme-song catalogue for one
MyAnimeList user and writes it as a single document.

The default source drives a headless Chrome through the user's list
page (which loads via infinite scroll) and each anime's detail page.
With --source api the official MyAnimeList API is used instead, which
also supplies numeric ids and cover pictures; API responses are cached
on disk between runs.

Examples:
  # Scrape and write JSON to stdout
  malthemes scrape -u mik2003

  # API source with YouTube lookups, YAML output
  malthemes scrape -u mik2003 --source api --youtube --format yaml -o songs.yaml

  # Spotify track URIs instead of YouTube links (needs SPOTIFY_CLIENT_ID
  # and SPOTIFY_CLIENT_SECRET in env or .env)
  malthemes scrape -u mik2003 --spotify -o songs.json`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	flags.StringP("username", "u", "", "MyAnimeList username (required)")
	flags.String("source", "scrape", "data source: scrape, api")

	// Output settings
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, jsonl, yaml")

	// Scrape settings
	flags.Int("scrolls", listing.DefaultConfig().Scrolls, "scroll cycles on the listing page")
	flags.Duration("settle", listing.DefaultConfig().Settle, "wait after each scroll / page load")
	flags.Duration("timeout", 30*time.Second, "per-navigation timeout")

	// API settings
	flags.String("client-id", "", "MAL API client id (or MAL_CLIENT_ID env)")
	flags.String("cache-dir", ".malthemes-cache", "directory for cached API responses")

	// Enrichment
	flags.Bool("youtube", false, "look up YouTube links for every theme song")
	flags.Bool("spotify", false, "resolve Spotify track URIs instead of YouTube links")
	flags.String("spotify-id", "", "Spotify client id (or SPOTIFY_CLIENT_ID env)")
	flags.String("spotify-secret", "", "Spotify client secret (or SPOTIFY_CLIENT_SECRET env)")

	_ = viper.BindPFlag("client_id", flags.Lookup("client-id"))
	_ = viper.BindPFlag("spotify_client_id", flags.Lookup("spotify-id"))
	_ = viper.BindPFlag("spotify_client_secret", flags.Lookup("spotify-secret"))
}

func runScrape(cmd *cobra.Command, _ []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})

	flags := cmd.Flags()
	cfg := scrapeConfig{}
	cfg.Username, _ = flags.GetString("username")
	cfg.Source, _ = flags.GetString("source")
	cfg.Output, _ = flags.GetString("output")
	cfg.Format, _ = flags.GetString("format")
	cfg.Scrolls, _ = flags.GetInt("scrolls")
	cfg.Settle, _ = flags.GetDuration("settle")
	cfg.Timeout, _ = flags.GetDuration("timeout")
	cfg.CacheDir, _ = flags.GetString("cache-dir")
	cfg.YouTube, _ = flags.GetBool("youtube")
	cfg.Spotify, _ = flags.GetBool("spotify")
	cfg.ClientID = viper.GetString("client_id")
	cfg.SpotifyID = viper.GetString("spotify_client_id")
	cfg.SpotifySecret = viper.GetString("spotify_client_secret")

	if err := validator.New().Struct(cfg); err != nil {
		logError("invalid configuration: %v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := buildCatalogue(ctx, cfg)
	if err != nil {
		logError("scrape failed: %v", err)
		return err
	}

	doc := output.NewDocument(cat)

	switch {
	case cfg.Spotify:
		finder := spotify.NewClient(spotify.Config{
			ClientID:     cfg.SpotifyID,
			ClientSecret: cfg.SpotifySecret,
		})
		enrichSpotify(ctx, &doc, finder, cache.New(cfg.CacheDir))
	case cfg.YouTube:
		enrichYouTube(ctx, &doc, youtube.NewSearcher())
	}

	size, err := writeDocument(doc, cfg)
	if err != nil {
		logError("write failed: %v", err)
		return err
	}

	dest := cfg.Output
	if dest == "" {
		dest = "stdout"
	}
	logInfo("Wrote catalogue for %s: %d anime, %s (%s)",
		cat.Username, len(doc.Anime), humanize.Bytes(uint64(size)), dest)
	return nil
}

// buildCatalogue dispatches to the browser-scraping or API source.
func buildCatalogue(ctx context.Context, cfg scrapeConfig) (*catalogue.Catalogue, error) {
	switch cfg.Source {
	case "api":
		return buildFromAPI(ctx, cfg)
	default:
		return buildFromScrape(ctx, cfg)
	}
}

// buildFromScrape runs the headless-Chrome pipeline: listing crawl, then one
// detail page per anime, all on a single browser session.
func buildFromScrape(ctx context.Context, cfg scrapeConfig) (*catalogue.Catalogue, error) {
	session, err := browser.NewChromeSession(browser.Config{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}
	defer session.Close()

	crawler := listing.New(session, listing.Config{
		Scrolls: cfg.Scrolls,
		Settle:  cfg.Settle,
	})
	scraper := themes.NewScraper(session, cfg.Settle)

	cat, err := catalogue.NewBuilder(crawler, scraper).Build(ctx, cfg.Username)
	if err != nil {
		return nil, err
	}

	// The listing page only exposes relative URLs; ids are part of the path.
	for i := range cat.Anime {
		if id, ok := malapi.IDFromPath(cat.Anime[i].URL); ok {
			cat.Anime[i].ID = id
		}
	}

	// With an API client id the cover pictures can be filled in as well.
	if cfg.ClientID != "" {
		enrichPictures(ctx, cfg, cat)
	}

	return cat, nil
}

// buildFromAPI assembles the catalogue from the official API: the paged
// anime list, then one anime lookup per entry for theme texts and pictures.
// Responses are cached on disk; per-anime failures degrade to entries with
// empty theme lists just like the scraping path.
func buildFromAPI(ctx context.Context, cfg scrapeConfig) (*catalogue.Catalogue, error) {
	client := malapi.NewClient(malapi.Config{ClientID: cfg.ClientID})
	store := cache.New(cfg.CacheDir)

	var entries []malapi.ListEntry
	hit, err := store.Get("animelist", cfg.Username, &entries)
	if err != nil {
		return nil, err
	}
	if !hit {
		entries, err = client.AnimeList(ctx, cfg.Username)
		if err != nil {
			return nil, fmt.Errorf("fetch anime list for %s: %w", cfg.Username, err)
		}
		if err := store.Put("animelist", cfg.Username, entries); err != nil {
			logger.Warn("failed to cache anime list", "error", err)
		}
	}

	cat := &catalogue.Catalogue{
		Username: cfg.Username,
		Anime:    make([]catalogue.Anime, 0, len(entries)),
	}
	total := len(entries)
	logger.Info("anime list retrieved", "username", cfg.Username, "count", total)

	for i, entry := range entries {
		anime := catalogue.Anime{ID: entry.ID, Title: entry.Title}

		data, err := lookupAnime(ctx, client, store, entry.ID)
		switch {
		case err == nil:
			anime.Title = data.Title
			anime.Picture = data.PictureURL()
			anime.Openings = parseThemeTexts(data.OpeningThemes)
			anime.Endings = parseThemeTexts(data.EndingThemes)
		case ctx.Err() != nil:
			return nil, err
		default:
			logger.Warn("anime lookup failed, keeping entry with no themes",
				"id", entry.ID,
				"title", entry.Title,
				"error", err)
		}

		cat.Anime = append(cat.Anime, anime)
		logger.Info("catalogue progress", "current", i+1, "total", total, "title", anime.Title)
	}

	return cat, nil
}

// lookupAnime fetches one anime through the cache.
func lookupAnime(ctx context.Context, client *malapi.Client, store *cache.Cache, id int) (*malapi.Anime, error) {
	key := strconv.Itoa(id)

	var cached malapi.Anime
	hit, err := store.Get("anime", key, &cached)
	if err != nil {
		return nil, err
	}
	if hit {
		return &cached, nil
	}

	anime, err := client.AnimeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := store.Put("anime", key, anime); err != nil {
		logger.Warn("failed to cache anime", "id", id, "error", err)
	}
	return anime, nil
}

func parseThemeTexts(texts []malapi.ThemeText) []themes.Song {
	if len(texts) == 0 {
		return nil
	}
	songs := make([]themes.Song, 0, len(texts))
	for _, t := range texts {
		songs = append(songs, malapi.ParseThemeText(t.Text))
	}
	return songs
}

// enrichPictures fills in cover pictures for scraped entries via the API.
// Failures only cost the picture, never the entry.
func enrichPictures(ctx context.Context, cfg scrapeConfig, cat *catalogue.Catalogue) {
	client := malapi.NewClient(malapi.Config{ClientID: cfg.ClientID})
	store := cache.New(cfg.CacheDir)

	for i := range cat.Anime {
		if cat.Anime[i].ID == 0 {
			continue
		}
		data, err := lookupAnime(ctx, client, store, cat.Anime[i].ID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("picture lookup failed", "title", cat.Anime[i].Title, "error", err)
			continue
		}
		cat.Anime[i].Picture = data.PictureURL()
	}
}

// writeDocument serializes the document in the configured format to the
// output file or stdout, returning the number of bytes written.
func writeDocument(doc output.Document, cfg scrapeConfig) (int, error) {
	buf := &bytes.Buffer{}
	writer, err := output.NewWriter(buf, output.Format(cfg.Format))
	if err != nil {
		return 0, err
	}
	if err := writer.Write(doc); err != nil {
		return 0, err
	}
	if err := writer.Flush(); err != nil {
		return 0, err
	}

	if cfg.Output == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return buf.Len(), err
	}
	if err := os.WriteFile(cfg.Output, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", cfg.Output, err)
	}
	return buf.Len(), nil
}
