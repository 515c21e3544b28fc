// Package mcptools exposes the scraping pipeline as MCP tool calls.
// Handler failures are logged and converted to failure-tagged results;
// a Go error is never returned to the server loop, so one bad call
// can't take the process down.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mfriesen/tapings/internal/calendar"
	"github.com/mfriesen/tapings/internal/config"
	"github.com/mfriesen/tapings/internal/fetcher"
	"github.com/mfriesen/tapings/internal/scrape"
	"github.com/mfriesen/tapings/internal/types"
)

// FetcherFactory opens a fetcher whose lifetime is bounded to one tool
// call. The ticket pipeline gets a browser; the lineups pipeline gets
// whatever the configured lineups mode selects.
type FetcherFactory func() (fetcher.Fetcher, error)

// Factories supplies per-pipeline fetcher constructors.
type Factories struct {
	Tickets FetcherFactory
	Lineups FetcherFactory
}

// Tools wires the three taping tools into an MCP server.
type Tools struct {
	cfg       *config.Config
	logger    *slog.Logger
	agg       *scrape.Aggregator
	factories Factories
	now       func() time.Time
}

// New creates the tool set.
func New(cfg *config.Config, logger *slog.Logger, factories Factories) *Tools {
	return &Tools{
		cfg:       cfg,
		logger:    logger.With("component", "mcptools"),
		agg:       scrape.NewAggregator(cfg, logger),
		factories: factories,
		now:       time.Now,
	}
}

// Register adds all tools to the server.
func (t *Tools) Register(srv *server.MCPServer) {
	srv.AddTool(mcp.NewTool(
		"get_available_shows",
		mcp.WithDescription("Retrieve all tracked taping dates with their ticket availability status. Can filter to show only available tickets."),
		mcp.WithBoolean("availableOnly",
			mcp.Description("If true, only return shows with available tickets. Defaults to false (returns all shows)."),
		),
	), t.wrap("get_available_shows", t.handleGetAvailableShows))

	srv.AddTool(mcp.NewTool(
		"get_guest_lineups",
		mcp.WithDescription("Scrape and return upcoming guest lineups for popular late night shows."),
	), t.wrap("get_guest_lineups", t.handleGetGuestLineups))

	srv.AddTool(mcp.NewTool(
		"add_show_to_calendar",
		mcp.WithDescription("Create a calendar event for a late night show taping, with iCal data that can be imported into calendar applications."),
		mcp.WithString("showName",
			mcp.Description("The name of the show (e.g., 'The Daily Show')."),
			mcp.Required(),
		),
		mcp.WithString("date",
			mcp.Description("The date of the taping (e.g., '2025-07-15' or 'July 15, 2025')."),
			mcp.Required(),
		),
		mcp.WithString("time",
			mcp.Description("The time of the taping (e.g., '4:30 PM ET')."),
			mcp.Required(),
		),
		mcp.WithString("location",
			mcp.Description("The location of the taping (e.g., 'New York City, NY')."),
			mcp.Required(),
		),
	), t.wrap("add_show_to_calendar", t.handleAddShowToCalendar))
}

// wrap catches panics in a handler and converts them to failure
// results, so one bad call never kills the server loop.
func (t *Tools) wrap(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				t.logger.Error("tool call panicked", "tool", name, "panic", r)
				res = mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", name, r))
				err = nil
			}
		}()
		return h(ctx, req)
	}
}

func (t *Tools) handleGetAvailableShows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	availableOnly, _ := req.Params.Arguments["availableOnly"].(bool)

	f, err := t.factories.Tickets()
	if err != nil {
		return t.failure("get_available_shows", fmt.Errorf("open fetcher: %w", err)), nil
	}
	defer t.closeFetcher(f)

	tickets := t.agg.Collect(ctx, f)
	summary := scrape.Summarize(tickets, availableOnly)

	return t.jsonResult("get_available_shows", summary)
}

func (t *Tools) handleGetGuestLineups(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := t.factories.Lineups()
	if err != nil {
		return t.failure("get_guest_lineups", fmt.Errorf("open fetcher: %w", err)), nil
	}
	defer t.closeFetcher(f)

	lineups, err := scrape.FetchLineups(ctx, f, t.cfg.Scrape)
	if err != nil {
		return t.failure("get_guest_lineups", err), nil
	}

	return t.jsonResult("get_guest_lineups", lineupsPayload{Lineups: lineups})
}

func (t *Tools) handleAddShowToCalendar(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments

	showName, err := requireString(args, "showName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := requireString(args, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeStr, err := requireString(args, "time")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	location, err := requireString(args, "location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := calendar.BuildEvent(showName, date, timeStr, location, t.now())
	if err != nil {
		return t.failure("add_show_to_calendar", err), nil
	}

	return t.jsonResult("add_show_to_calendar", eventPayload{Event: event})
}

type lineupsPayload struct {
	Lineups []types.ShowGuestSchedule `json:"lineups"`
}

type eventPayload struct {
	Event *types.CalendarEvent `json:"event"`
}

// jsonResult marshals a success payload into a text result.
func (t *Tools) jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return t.failure(tool, fmt.Errorf("marshal result: %w", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// failure logs an error and converts it to a failure-tagged result.
func (t *Tools) failure(tool string, err error) *mcp.CallToolResult {
	t.logger.Error("tool call failed", "tool", tool, "error", err)
	return mcp.NewToolResultError(err.Error())
}

func (t *Tools) closeFetcher(f fetcher.Fetcher) {
	if err := f.Close(); err != nil {
		t.logger.Warn("fetcher close failed", "type", f.Type(), "error", err)
	}
}

// requireString extracts a mandatory non-empty string argument.
func requireString(args map[string]any, key string) (string, error) {
	s, _ := args[key].(string)
	if s == "" {
		return "", fmt.Errorf("%s parameter is required", key)
	}
	return s, nil
}
