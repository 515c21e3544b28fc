package fetcher

import (
	"context"
	"time"
)

// PageRequest describes one page fetch.
type PageRequest struct {
	// URL is the target page.
	URL string

	// WaitSelector is a readiness marker: a CSS selector whose
	// appearance signals that client-rendered content has finished
	// loading. Empty means no readiness wait.
	WaitSelector string

	// NavTimeout bounds navigation. Zero means the fetcher default.
	NavTimeout time.Duration

	// ReadyTimeout bounds the readiness wait. Zero means the fetcher
	// default.
	ReadyTimeout time.Duration
}

// Fetcher retrieves the rendered HTML of a page.
type Fetcher interface {
	// Fetch navigates to the request's URL and returns the page HTML.
	Fetch(ctx context.Context, req *PageRequest) (string, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}
