// Package dates normalizes the partial dates shown on listing pages
// ("Jul 15", no year) into absolute times. Listings only ever refer to
// upcoming tapings, so a month/day that already passed this year is
// taken to mean the same date next year.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NotAvailable is the display sentinel for an unparsable date.
const NotAvailable = "Date not available"

var monthIndex = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

var clockRe = regexp.MustCompile(`(?i)(\d+):(\d+)\s*(AM|PM)?`)

// ParseMonthDay converts a month abbreviation plus day of month into an
// absolute time, applying timeOfDay when it parses as a 12-hour clock
// (midnight otherwise). The candidate is built in now's year; when the
// result is strictly before now it rolls over to the next year.
// Returns nil when the month is unrecognized or the day is not an
// integer.
func ParseMonthDay(month, day, timeOfDay string, now time.Time) *time.Time {
	m, ok := monthIndex[strings.TrimSpace(month)]
	if !ok {
		return nil
	}
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return nil
	}

	hour, minute := parseClock(timeOfDay)

	t := time.Date(now.Year(), m, d, hour, minute, 0, 0, now.Location())
	if t.Before(now) {
		t = time.Date(now.Year()+1, m, d, hour, minute, 0, 0, now.Location())
	}
	return &t
}

// parseClock extracts hours and minutes from a 12-hour time string like
// "4:15 PM ET". Unparsable input means midnight.
func parseClock(s string) (hour, minute int) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	switch strings.ToUpper(m[3]) {
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	return hour, minute
}

// Render formats an absolute time for display in long form, e.g.
// "Tuesday, July 15, 2025". A nil time renders as the NotAvailable
// sentinel. Display only; the rendered string is not parsed back.
func Render(t *time.Time) string {
	if t == nil {
		return NotAvailable
	}
	return t.Format("Monday, January 2, 2006")
}
