// Package browser drives a headless Chrome instance for pages that only
// materialize their content through client-side JavaScript.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/mik2003/malthemes/internal/logger"
)

// ErrSessionClosed indicates the browser process is gone and no further
// navigation is possible.
var ErrSessionClosed = errors.New("browser session closed")

// Session abstracts a scriptable rendering session. Any implementation that
// can navigate, scroll the page and expose the rendered markup is
// substitutable (embedded engine, remote automation protocol, test fake).
type Session interface {
	// Open navigates to the URL. It returns once navigation is issued, not
	// once JS-driven content has finished loading.
	Open(ctx context.Context, url string) error

	// ScrollToBottom scrolls the page to the end of the document, which
	// triggers lazy-loaded content on infinite-scroll pages.
	ScrollToBottom(ctx context.Context) error

	// HTML returns the rendered DOM serialization at the moment of the call.
	HTML(ctx context.Context) (string, error)

	// Close releases the browser process.
	Close() error
}

// Config holds browser session configuration.
type Config struct {
	UserAgent string
	Timeout   time.Duration // per-operation timeout
}

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// ChromeSession is a Session backed by one persistent chromedp browser
// context. The same tab is reused for every navigation of a run, which keeps
// startup cost bounded and the automation fingerprint consistent.
type ChromeSession struct {
	config        Config
	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
}

// NewChromeSession starts a headless browser and returns a session bound to
// it. The caller must Close the session to release the browser process.
func NewChromeSession(cfg Config) (*ChromeSession, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)

	// chromedp's default binary lookup can miss non-standard installs.
	if chromePath := FindChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so a missing binary fails here instead of on
	// the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Debug("browser session started",
		"user_agent", cfg.UserAgent,
		"timeout", cfg.Timeout)

	return &ChromeSession{
		config:        cfg,
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
	}, nil
}

// Open navigates the persistent tab to the URL.
func (s *ChromeSession) Open(ctx context.Context, url string) error {
	logger.Debug("session navigating", "url", url)
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// ScrollToBottom scrolls the current page to the document end.
func (s *ChromeSession) ScrollToBottom(ctx context.Context) error {
	err := s.run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight);`, nil))
	if err != nil {
		return fmt.Errorf("scroll to bottom: %w", err)
	}
	return nil
}

// HTML returns the serialized DOM of the current page.
func (s *ChromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("read rendered markup: %w", err)
	}
	return html, nil
}

// run executes chromedp actions against the persistent browser context,
// honoring both the caller's context and the per-operation timeout.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.browserCtx.Err() != nil {
		return ErrSessionClosed
	}

	runCtx, cancel := context.WithTimeout(s.browserCtx, s.config.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if s.browserCtx.Err() != nil {
			return ErrSessionClosed
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// Close shuts down the browser process. The session is unusable afterwards.
func (s *ChromeSession) Close() error {
	logger.Debug("browser session closing")
	if s.cancelBrowser != nil {
		s.cancelBrowser()
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}
	return nil
}
