package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// Requires a local Chromium; set TAPINGS_BROWSER_TESTS=1 to run.
func TestBrowserFetcherIntegration(t *testing.T) {
	if os.Getenv("TAPINGS_BROWSER_TESTS") == "" {
		t.Skip("set TAPINGS_BROWSER_TESTS=1 to run browser integration tests")
	}

	const page = `<!DOCTYPE html>
<html><body>
<div id="late"></div>
<script>
setTimeout(function () {
  document.getElementById("late").innerHTML = '<ul class="eventList"><li>rendered</li></ul>';
}, 100);
</script>
</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	bf, err := NewBrowserFetcher(testFetcherConfig(), testLogger)
	if err != nil {
		t.Fatalf("launch browser: %v", err)
	}
	defer bf.Close()

	html, err := bf.Fetch(context.Background(), &PageRequest{
		URL:          srv.URL,
		WaitSelector: ".eventList",
	})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if !strings.Contains(html, "rendered") {
		t.Error("readiness wait returned before client-side render finished")
	}
}

func TestBrowserFetcherReadyTimeout(t *testing.T) {
	if os.Getenv("TAPINGS_BROWSER_TESTS") == "" {
		t.Skip("set TAPINGS_BROWSER_TESTS=1 to run browser integration tests")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>never renders the marker</body></html>"))
	}))
	defer srv.Close()

	cfg := testFetcherConfig()
	cfg.ReadyTimeout = 1
	bf, err := NewBrowserFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("launch browser: %v", err)
	}
	defer bf.Close()

	_, err = bf.Fetch(context.Background(), &PageRequest{
		URL:          srv.URL,
		WaitSelector: ".eventList",
	})
	if err == nil {
		t.Fatal("expected readiness timeout error")
	}
}
