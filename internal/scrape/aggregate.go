package scrape

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/mfriesen/tapings/internal/config"
	"github.com/mfriesen/tapings/internal/fetcher"
	"github.com/mfriesen/tapings/internal/types"
)

// Aggregator fans ticket-page fetches out across all configured shows
// and merges the results into one deduplicated, chronologically sorted
// list. It holds no state between calls; the browser handle is passed
// in per call so its lifetime stays bounded to that call.
type Aggregator struct {
	shows  []config.Show
	scrape config.ScrapeConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator creates an Aggregator for the configured shows.
func NewAggregator(cfg *config.Config, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		shows:  cfg.Shows,
		scrape: cfg.Scrape,
		logger: logger.With("component", "aggregator"),
		now:    time.Now,
	}
}

// Collect fetches every show's ticket page concurrently and returns
// the merged records. One show's failure never cancels the others: a
// failed branch is logged and contributes zero records.
func (a *Aggregator) Collect(ctx context.Context, f fetcher.Fetcher) []types.Ticket {
	if len(a.shows) == 0 {
		return nil
	}

	results := make([][]types.Ticket, len(a.shows))

	p := pool.New().WithMaxGoroutines(len(a.shows))
	for i, show := range a.shows {
		p.Go(func() {
			tickets, err := a.fetchShow(ctx, f, show)
			if err != nil {
				a.logger.Warn("show fetch failed",
					"show", show.Name,
					"url", show.URL,
					"error", err,
				)
				return
			}
			results[i] = tickets
		})
	}
	p.Wait()

	var all []types.Ticket
	for _, tickets := range results {
		all = append(all, tickets...)
	}

	return sortTickets(dedupeTickets(all))
}

// fetchShow retrieves and parses one show's ticket page.
func (a *Aggregator) fetchShow(ctx context.Context, f fetcher.Fetcher, show config.Show) ([]types.Ticket, error) {
	pageHTML, err := f.Fetch(ctx, &fetcher.PageRequest{
		URL:          show.URL,
		WaitSelector: a.scrape.TicketReadySelector,
	})
	if err != nil {
		return nil, err
	}
	return ExtractTickets(pageHTML, show, a.now())
}

// dedupeTickets keeps at most one record per show per calendar day,
// first seen wins. Records without an absolute date fall back to their
// raw display string as the day key.
func dedupeTickets(tickets []types.Ticket) []types.Ticket {
	seen := make(map[string]struct{}, len(tickets))
	unique := make([]types.Ticket, 0, len(tickets))

	for _, t := range tickets {
		dayKey := t.Date
		if t.DateObj != nil {
			dayKey = t.DateObj.Format("2006-01-02")
		}
		key := t.Show + "\x00" + dayKey
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, t)
	}

	return unique
}

// sortTickets orders records ascending by absolute time. Records with
// no date sort after all dated records, keeping their original
// relative order.
func sortTickets(tickets []types.Ticket) []types.Ticket {
	sort.SliceStable(tickets, func(i, j int) bool {
		a, b := tickets[i].DateObj, tickets[j].DateObj
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
	return tickets
}

// Summarize tallies a record set. When availableOnly is set, sold-out
// records are excluded before counting, so the counts always describe
// exactly the returned Shows slice.
func Summarize(tickets []types.Ticket, availableOnly bool) types.TicketSummary {
	filtered := tickets
	if availableOnly {
		filtered = make([]types.Ticket, 0, len(tickets))
		for _, t := range tickets {
			if t.Available {
				filtered = append(filtered, t)
			}
		}
	}

	summary := types.TicketSummary{
		TotalShows: len(filtered),
		Shows:      filtered,
	}
	for _, t := range filtered {
		if t.Available {
			summary.AvailableShows++
		} else {
			summary.SoldOutShows++
		}
	}

	return summary
}
