package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/mfriesen/tapings/internal/config"
	"github.com/mfriesen/tapings/internal/types"
)

// HTTPFetcher implements Fetcher using net/http. It serves static
// pages that don't need a browser to render, like the guest-lineups
// listings page. WaitSelector is ignored: the document is already
// complete when the body arrives.
type HTTPFetcher struct {
	client *http.Client
	cfg    *config.FetcherConfig
	logger *slog.Logger
}

// NewHTTPFetcher creates a plain HTTP fetcher.
func NewHTTPFetcher(cfg *config.FetcherConfig, logger *slog.Logger) *HTTPFetcher {
	transport := &http.Transport{
		MaxIdleConns:    4,
		IdleConnTimeout: 30 * time.Second,
		// We handle decompression ourselves (including brotli)
		DisableCompression: true,
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.NavTimeout,
		},
		cfg:    cfg,
		logger: logger.With("component", "http_fetcher"),
	}
}

// Fetch retrieves the page body over HTTP and returns it as HTML.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *PageRequest) (string, error) {
	start := time.Now()

	timeout := req.NavTimeout
	if timeout <= 0 {
		timeout = f.cfg.NavTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", &types.FetchError{URL: req.URL, Err: err}
	}

	httpReq.Header.Set("User-Agent", f.cfg.UserAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return "", &types.FetchError{URL: req.URL, Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &types.FetchError{
			URL:       req.URL,
			Err:       fmt.Errorf("unexpected status %d", resp.StatusCode),
			Retryable: resp.StatusCode >= 500,
		}
	}

	reader, err := decompressReader(resp, resp.Body)
	if err != nil {
		return "", &types.FetchError{URL: req.URL, Err: err}
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.cfg.MaxBodySize+1))
	if err != nil {
		return "", &types.FetchError{URL: req.URL, Err: err, Retryable: true}
	}
	if int64(len(body)) > f.cfg.MaxBodySize {
		return "", &types.FetchError{URL: req.URL, Err: types.ErrBodyTooBig}
	}

	f.logger.Debug("http fetch complete",
		"url", req.URL,
		"size", len(body),
		"duration", time.Since(start),
	)

	return string(body), nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

// decompressReader wraps the body reader according to Content-Encoding.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
