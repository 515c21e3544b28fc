package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for the tapings server.
type Config struct {
	Shows   []Show        `mapstructure:"shows"   yaml:"shows"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"  yaml:"scrape"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// Show describes one recurring taping we track tickets for.
// The ticket site does not expose per-ticket times, so the default
// start time and location are carried into every scraped record.
type Show struct {
	Name             string `mapstructure:"name"               yaml:"name"`
	URL              string `mapstructure:"url"                yaml:"url"`
	DefaultStartTime string `mapstructure:"default_start_time" yaml:"default_start_time"`
	Location         string `mapstructure:"location"           yaml:"location"`
}

// FetcherConfig controls page fetching.
type FetcherConfig struct {
	// LineupsMode selects the fetcher for the guest-lineups page:
	// "browser" or "http". Per-show ticket pages always use the
	// browser fetcher since they render their ticket lists client-side.
	LineupsMode  string        `mapstructure:"lineups_mode"  yaml:"lineups_mode"`
	UserAgent    string        `mapstructure:"user_agent"    yaml:"user_agent"`
	NavTimeout   time.Duration `mapstructure:"nav_timeout"   yaml:"nav_timeout"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout" yaml:"ready_timeout"`
	Stealth      bool          `mapstructure:"stealth"       yaml:"stealth"`
	MaxBodySize  int64         `mapstructure:"max_body_size" yaml:"max_body_size"`
}

// ScrapeConfig controls scrape targets and readiness markers.
type ScrapeConfig struct {
	// LineupsURL is the shared guest-lineups listings page.
	LineupsURL string `mapstructure:"lineups_url" yaml:"lineups_url"`

	// TicketReadySelector is the DOM marker that signals a ticket page
	// has finished client-side rendering.
	TicketReadySelector string `mapstructure:"ticket_ready_selector" yaml:"ticket_ready_selector"`

	// LineupsReadySelector is the readiness marker for the lineups page.
	LineupsReadySelector string `mapstructure:"lineups_ready_selector" yaml:"lineups_ready_selector"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// DefaultConfig returns the built-in configuration, including the
// default show registry.
func DefaultConfig() *Config {
	return &Config{
		Shows: DefaultShows(),
		Fetcher: FetcherConfig{
			LineupsMode:  "browser",
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			NavTimeout:   60 * time.Second,
			ReadyTimeout: 30 * time.Second,
			Stealth:      false,
			MaxBodySize:  10 << 20,
		},
		Scrape: ScrapeConfig{
			LineupsURL:           "https://www.interbridge.com/lineups.html",
			TicketReadySelector:  ".eventList",
			LineupsReadySelector: "body",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultShows returns the built-in show registry.
func DefaultShows() []Show {
	return []Show{
		{
			Name:             "The View",
			URL:              "https://1iota.com/show/385/the-view",
			DefaultStartTime: "9:30 AM ET",
			Location:         "New York City, NY",
		},
		{
			Name:             "The Late Show with Stephen Colbert",
			URL:              "https://1iota.com/show/536/the-late-show-with-stephen-colbert",
			DefaultStartTime: "4:15 PM ET",
			Location:         "New York City, NY",
		},
		{
			Name:             "The Daily Show",
			URL:              "https://1iota.com/show/1248/the-daily-show",
			DefaultStartTime: "4:30 PM ET",
			Location:         "New York City, NY",
		},
		{
			Name:             "The Tonight Show Starring Jimmy Fallon",
			URL:              "https://1iota.com/show/353/the-tonight-show-starring-jimmy-fallon",
			DefaultStartTime: "3:45 PM ET",
			Location:         "New York City, NY",
		},
		{
			Name:             "Jimmy Kimmel Live",
			URL:              "https://1iota.com/show/1/jimmy-kimmel-live",
			DefaultStartTime: "3:15 PM PT",
			Location:         "Los Angeles, CA",
		},
		{
			Name:             "Late Night with Seth Meyers",
			URL:              "https://1iota.com/show/461/late-night-with-seth-meyers",
			DefaultStartTime: "2:00 PM ET",
			Location:         "New York City, NY",
		},
	}
}
