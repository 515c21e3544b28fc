package scrape

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mfriesen/tapings/internal/config"
	"github.com/mfriesen/tapings/internal/dates"
	"github.com/mfriesen/tapings/internal/types"
)

// Structural selectors for the ticket listing pages. Each taping date
// is rendered as a .tabList list item carrying .month and .dom (day of
// month) markers; header rows carry a calendar icon instead.
const (
	ticketItemSelector = ".tabList li"
	monthSelector      = ".month"
	dayOfMonthSelector = ".dom"
	statusSelector     = ".status"
	calendarIconClass  = ".calendarIcon"
	soldOutClass       = "soldout"
)

var soldOutRe = regexp.MustCompile(`(?i)sold\s*out|unavailable`)

// isSoldOut classifies a listing item. Either signal suffices: a
// structural soldout class on the item, or sold-out/unavailable
// phrasing in its status text.
func isSoldOut(hasSoldOutClass bool, statusText string) bool {
	return hasSoldOutClass || soldOutRe.MatchString(statusText)
}

// ExtractTickets parses one show's rendered listing page into ticket
// records. Items without both month and day markers are skipped; every
// surviving item yields exactly one record. Nothing is filtered here —
// that happens downstream in the aggregator and summary.
func ExtractTickets(html string, show config.Show, now time.Time) ([]types.Ticket, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &types.ParseError{URL: show.URL, Selector: ticketItemSelector, Err: err}
	}

	var tickets []types.Ticket

	doc.Find(ticketItemSelector).Each(func(_ int, sel *goquery.Selection) {
		// Header and non-ticket rows
		if sel.Find(calendarIconClass).Length() > 0 ||
			sel.Find(monthSelector).Length() == 0 ||
			sel.Find(dayOfMonthSelector).Length() == 0 {
			return
		}

		month := strings.TrimSpace(sel.Find(monthSelector).Text())
		day := strings.TrimSpace(sel.Find(dayOfMonthSelector).Text())
		statusText := strings.TrimSpace(sel.Find(statusSelector).Text())

		soldOut := isSoldOut(sel.HasClass(soldOutClass), statusText)

		dateObj := dates.ParseMonthDay(month, day, show.DefaultStartTime, now)

		status := types.StatusAvailable
		if soldOut {
			status = types.StatusSoldOut
		}

		tickets = append(tickets, types.Ticket{
			Show:      show.Name,
			Date:      dates.Render(dateObj),
			DateObj:   dateObj,
			Time:      show.DefaultStartTime,
			Location:  show.Location,
			Available: !soldOut,
			Status:    status,
		})
	})

	return tickets, nil
}
