package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/mfriesen/tapings/internal/config"
	"github.com/mfriesen/tapings/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// One browser process serves the fetcher's whole lifetime; every Fetch
// opens its own page (an isolated browsing context) and closes it on
// all exit paths, so concurrent fetches never share page state.
type BrowserFetcher struct {
	browser *rod.Browser
	cfg     *config.FetcherConfig
	logger  *slog.Logger
	stealth bool
}

// BrowserOption configures the BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithStealth enables stealth page patches to reduce anti-automation
// blocking.
func WithStealth() BrowserOption {
	return func(bf *BrowserFetcher) { bf.stealth = true }
}

// NewBrowserFetcher launches a headless browser and connects to it.
func NewBrowserFetcher(cfg *config.FetcherConfig, logger *slog.Logger, opts ...BrowserOption) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:     cfg,
		logger:  logger.With("component", "browser_fetcher"),
		stealth: cfg.Stealth,
	}

	for _, opt := range opts {
		opt(bf)
	}

	launchURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	bf.browser = browser

	bf.logger.Debug("browser fetcher ready", "stealth", bf.stealth)

	return bf, nil
}

// Fetch navigates to the URL, waits for the readiness marker, and
// returns the rendered HTML.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *PageRequest) (string, error) {
	start := time.Now()

	page, err := bf.newPage()
	if err != nil {
		return "", &types.FetchError{URL: req.URL, Err: err, Retryable: true}
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx)

	if ua := bf.cfg.UserAgent; ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	navTimeout := req.NavTimeout
	if navTimeout <= 0 {
		navTimeout = bf.cfg.NavTimeout
	}
	if err := page.Timeout(navTimeout).Navigate(req.URL); err != nil {
		return "", &types.FetchError{URL: req.URL, Err: err, Retryable: true}
	}

	// Pages render their listing data asynchronously; block until the
	// readiness marker appears before reading content.
	if req.WaitSelector != "" {
		readyTimeout := req.ReadyTimeout
		if readyTimeout <= 0 {
			readyTimeout = bf.cfg.ReadyTimeout
		}
		if _, err := page.Timeout(readyTimeout).Element(req.WaitSelector); err != nil {
			return "", &types.FetchError{
				URL:       req.URL,
				Err:       fmt.Errorf("wait for %q: %w", req.WaitSelector, err),
				Retryable: true,
			}
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", &types.FetchError{URL: req.URL, Err: err, Retryable: true}
	}

	bf.logger.Debug("browser fetch complete",
		"url", req.URL,
		"size", len(html),
		"duration", time.Since(start),
	)

	return html, nil
}

// Close shuts down the browser process.
func (bf *BrowserFetcher) Close() error {
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}

// newPage opens a fresh page, with stealth patches when enabled.
func (bf *BrowserFetcher) newPage() (*rod.Page, error) {
	if bf.stealth {
		return stealth.Page(bf.browser)
	}
	return bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
}
