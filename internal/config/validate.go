package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if len(cfg.Shows) == 0 {
		return fmt.Errorf("shows must not be empty")
	}
	for i, show := range cfg.Shows {
		if show.Name == "" {
			return fmt.Errorf("shows[%d].name must not be empty", i)
		}
		if err := ValidateURL(show.URL); err != nil {
			return fmt.Errorf("shows[%d] (%s): %w", i, show.Name, err)
		}
	}

	if cfg.Fetcher.LineupsMode != "http" && cfg.Fetcher.LineupsMode != "browser" {
		return fmt.Errorf("fetcher.lineups_mode must be 'http' or 'browser', got %q", cfg.Fetcher.LineupsMode)
	}
	if cfg.Fetcher.NavTimeout <= 0 {
		return fmt.Errorf("fetcher.nav_timeout must be > 0")
	}
	if cfg.Fetcher.ReadyTimeout <= 0 {
		return fmt.Errorf("fetcher.ready_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	if err := ValidateURL(cfg.Scrape.LineupsURL); err != nil {
		return fmt.Errorf("scrape.lineups_url: %w", err)
	}
	if cfg.Scrape.TicketReadySelector == "" {
		return fmt.Errorf("scrape.ticket_ready_selector must not be empty")
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks that a URL is absolute http(s).
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", rawURL)
	}
	return nil
}
