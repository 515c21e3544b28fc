package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/mfriesen/tapings/internal/config"
	"github.com/mfriesen/tapings/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testFetcherConfig() *config.FetcherConfig {
	return &config.FetcherConfig{
		UserAgent:    "tapings-test/1.0",
		NavTimeout:   5 * time.Second,
		ReadyTimeout: 5 * time.Second,
		MaxBodySize:  1 << 20,
	}
}

func TestHTTPFetcherPlain(t *testing.T) {
	const page = "<html><body>lineups</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "tapings-test/1.0" {
			t.Errorf("unexpected user agent %q", ua)
		}
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testFetcherConfig(), testLogger)
	defer f.Close()

	html, err := f.Fetch(context.Background(), &PageRequest{URL: srv.URL})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if html != page {
		t.Errorf("got %q, want %q", html, page)
	}
}

func TestHTTPFetcherBrotli(t *testing.T) {
	const page = "<html><body>compressed lineups</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		_, _ = bw.Write([]byte(page))
		_ = bw.Close()
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testFetcherConfig(), testLogger)
	defer f.Close()

	html, err := f.Fetch(context.Background(), &PageRequest{URL: srv.URL})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if html != page {
		t.Errorf("got %q, want %q", html, page)
	}
}

func TestHTTPFetcherGzip(t *testing.T) {
	const page = "<html><body>gz</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		_, _ = gw.Write([]byte(page))
		_ = gw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testFetcherConfig(), testLogger)
	defer f.Close()

	html, err := f.Fetch(context.Background(), &PageRequest{URL: srv.URL})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if html != page {
		t.Errorf("got %q, want %q", html, page)
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testFetcherConfig(), testLogger)
	defer f.Close()

	_, err := f.Fetch(context.Background(), &PageRequest{URL: srv.URL})
	if err == nil {
		t.Fatal("expected error for 404")
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fe.Retryable {
		t.Error("404 should not be retryable")
	}
}

func TestHTTPFetcherBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer srv.Close()

	cfg := testFetcherConfig()
	cfg.MaxBodySize = 1024
	f := NewHTTPFetcher(cfg, testLogger)
	defer f.Close()

	_, err := f.Fetch(context.Background(), &PageRequest{URL: srv.URL})
	if !errors.Is(err, types.ErrBodyTooBig) {
		t.Fatalf("expected ErrBodyTooBig, got %v", err)
	}
}
