package types

import (
	"time"
)

// Ticket availability statuses.
const (
	StatusAvailable = "Available"
	StatusSoldOut   = "Sold Out"
)

// Ticket is one scraped taping date for a show.
type Ticket struct {
	// Show is the show's display name.
	Show string `json:"show"`

	// Date is the human-readable taping date, or "Date not available"
	// when the month/day could not be extracted.
	Date string `json:"date"`

	// DateObj is the absolute taping time; nil when extraction failed.
	DateObj *time.Time `json:"dateObj"`

	// Time is the show's configured default start time, e.g. "4:15 PM ET".
	Time string `json:"time"`

	// Location is the show's configured venue location.
	Location string `json:"location"`

	// Available is true when tickets can still be requested.
	// Invariant: Available == (Status == StatusAvailable).
	Available bool `json:"available"`

	// Status is the availability status text.
	Status string `json:"status"`
}

// TicketSummary tallies a set of scraped tickets.
type TicketSummary struct {
	TotalShows     int      `json:"totalShows"`
	AvailableShows int      `json:"availableShows"`
	SoldOutShows   int      `json:"soldOutShows"`
	Shows          []Ticket `json:"shows"`
}

// ShowGuestEntry is one dated guest listing for a show.
// Guests always has at least one name; lines that yield no guests
// after splitting and trimming are never recorded.
type ShowGuestEntry struct {
	// Date is the short-form listing date, e.g. "7/1".
	Date   string   `json:"date"`
	Guests []string `json:"guests"`
}

// ShowGuestSchedule is the upcoming guest lineup for one show.
type ShowGuestSchedule struct {
	Show    string           `json:"show"`
	Entries []ShowGuestEntry `json:"entries"`
}

// CalendarEvent is a synthesized calendar entry for a taping.
type CalendarEvent struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	ICalData    string    `json:"iCalData"`
}
