package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mfriesen/tapings/internal/config"
	"github.com/mfriesen/tapings/internal/fetcher"
	"github.com/mfriesen/tapings/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const testTicketPage = `<div class="eventList"><ul class="tabList">
<li><span class="month">Aug</span><span class="dom">1</span><span class="status">Request Tickets</span></li>
<li class="soldout"><span class="month">Aug</span><span class="dom">2</span><span class="status">SOLD OUT</span></li>
</ul></div>`

const testLineupsPage = `<html><body>
<p><a name="show"></a>The Test Show</p>
<p>Mo 7/1: Alice, Bob</p>
<p>Get the day's lineups delivered.</p>
</body></html>`

// pageFetcher serves one canned page for every URL.
type pageFetcher struct {
	page string
	err  error
}

func (f *pageFetcher) Fetch(context.Context, *fetcher.PageRequest) (string, error) {
	return f.page, f.err
}

func (f *pageFetcher) Close() error { return nil }

func (f *pageFetcher) Type() string { return "fake" }

func newTestTools(ticket, lineups fetcher.Fetcher) *Tools {
	cfg := config.DefaultConfig()
	cfg.Shows = cfg.Shows[:1]
	t := New(cfg, testLogger, Factories{
		Tickets: func() (fetcher.Fetcher, error) { return ticket, nil },
		Lineups: func() (fetcher.Fetcher, error) { return lineups, nil },
	})
	t.now = func() time.Time { return time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC) }
	return t
}

func callReq(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, not TextContent", res.Content[0])
	}
	return tc.Text
}

func TestGetAvailableShows(t *testing.T) {
	tools := newTestTools(&pageFetcher{page: testTicketPage}, nil)

	res, err := tools.handleGetAvailableShows(context.Background(), callReq("get_available_shows", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected failure result: %s", resultText(t, res))
	}

	var summary types.TicketSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &summary); err != nil {
		t.Fatalf("bad JSON payload: %v", err)
	}
	if summary.TotalShows != 2 || summary.AvailableShows != 1 || summary.SoldOutShows != 1 {
		t.Errorf("summary = %d/%d/%d", summary.TotalShows, summary.AvailableShows, summary.SoldOutShows)
	}
}

func TestGetAvailableShowsFiltered(t *testing.T) {
	tools := newTestTools(&pageFetcher{page: testTicketPage}, nil)

	req := callReq("get_available_shows", map[string]any{"availableOnly": true})
	res, err := tools.handleGetAvailableShows(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var summary types.TicketSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &summary); err != nil {
		t.Fatalf("bad JSON payload: %v", err)
	}
	if summary.TotalShows != 1 || summary.SoldOutShows != 0 {
		t.Errorf("filtered summary = %+v", summary)
	}
}

func TestGetAvailableShowsFetchFailureStillSucceeds(t *testing.T) {
	// A fetch failure is contained per show; the call itself succeeds
	// with an empty summary.
	tools := newTestTools(&pageFetcher{err: errors.New("nav timeout")}, nil)

	res, err := tools.handleGetAvailableShows(context.Background(), callReq("get_available_shows", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatal("per-show fetch failure must not fail the call")
	}

	var summary types.TicketSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &summary); err != nil {
		t.Fatalf("bad JSON payload: %v", err)
	}
	if summary.TotalShows != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}

func TestGetGuestLineups(t *testing.T) {
	tools := newTestTools(nil, &pageFetcher{page: testLineupsPage})

	res, err := tools.handleGetGuestLineups(context.Background(), callReq("get_guest_lineups", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected failure result: %s", resultText(t, res))
	}

	var payload struct {
		Lineups []types.ShowGuestSchedule `json:"lineups"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &payload); err != nil {
		t.Fatalf("bad JSON payload: %v", err)
	}
	if len(payload.Lineups) != 1 || payload.Lineups[0].Show != "The Test Show" {
		t.Errorf("lineups = %+v", payload.Lineups)
	}
}

func TestGetGuestLineupsFetchFailure(t *testing.T) {
	tools := newTestTools(nil, &pageFetcher{err: errors.New("nav timeout")})

	res, err := tools.handleGetGuestLineups(context.Background(), callReq("get_guest_lineups", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected failure result when the shared page fetch fails")
	}
}

func TestAddShowToCalendar(t *testing.T) {
	tools := newTestTools(nil, nil)

	req := callReq("add_show_to_calendar", map[string]any{
		"showName": "The Daily Show",
		"date":     "2025-07-15",
		"time":     "4:30 PM ET",
		"location": "New York City, NY",
	})
	res, err := tools.handleAddShowToCalendar(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected failure result: %s", resultText(t, res))
	}

	var payload struct {
		Event types.CalendarEvent `json:"event"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &payload); err != nil {
		t.Fatalf("bad JSON payload: %v", err)
	}
	if payload.Event.Summary != "The Daily Show" {
		t.Errorf("summary = %q", payload.Event.Summary)
	}
	if !strings.Contains(payload.Event.ICalData, "BEGIN:VCALENDAR") {
		t.Error("missing iCal data")
	}
	wantStart := time.Date(2025, time.July, 15, 21, 30, 0, 0, time.UTC)
	if !payload.Event.StartTime.Equal(wantStart) {
		t.Errorf("start = %v, want %v", payload.Event.StartTime, wantStart)
	}
}

func TestAddShowToCalendarValidation(t *testing.T) {
	tools := newTestTools(nil, nil)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing showName", map[string]any{"date": "2025-07-15", "time": "4:30 PM ET", "location": "NYC"}},
		{"bad time format", map[string]any{"showName": "Show", "date": "2025-07-15", "time": "16:30", "location": "NYC"}},
		{"bad date", map[string]any{"showName": "Show", "date": "whenever", "time": "4:30 PM ET", "location": "NYC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tools.handleAddShowToCalendar(context.Background(), callReq("add_show_to_calendar", tt.args))
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if !res.IsError {
				t.Error("expected failure-tagged result")
			}
		})
	}
}

func TestWrapRecoversPanic(t *testing.T) {
	tools := newTestTools(nil, nil)

	h := tools.wrap("panicky", func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		panic("boom")
	})

	res, err := h(context.Background(), callReq("panicky", nil))
	if err != nil {
		t.Fatalf("wrap returned error: %v", err)
	}
	if !res.IsError {
		t.Error("expected failure-tagged result from recovered panic")
	}
}
