// Package calendar synthesizes calendar events for tapings. Pure
// formatting over already-known fields; no scraping or network I/O.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mfriesen/tapings/internal/types"
)

// timeRe matches the accepted taping time format, e.g. "4:30 PM ET".
var timeRe = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)\s*(ET|PT|CT|MT)`)

// tzOffsets are fixed UTC offsets per timezone abbreviation. No
// daylight-saving adjustment; documented behavior.
var tzOffsets = map[string]int{
	"ET": -5,
	"PT": -8,
	"CT": -6,
	"MT": -7,
}

// dateLayouts are the accepted input date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"01/02/2006",
}

// eventDuration is the fixed taping length.
const eventDuration = time.Hour

// BuildEvent creates a calendar event for a taping. The date must
// parse under one of the accepted layouts and the time must look like
// "4:30 PM ET"; either failing yields a descriptive error.
func BuildEvent(showName, date, timeStr, location string, now time.Time) (*types.CalendarEvent, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	start, err := applyTime(day, timeStr)
	if err != nil {
		return nil, err
	}
	end := start.Add(eventDuration)

	description := fmt.Sprintf(
		"Attending %s taping.\n\nLocation: %s\nTime: %s\n\nDon't forget to arrive early for check-in!",
		showName, location, timeStr,
	)

	event := &types.CalendarEvent{
		Summary:     showName,
		Description: description,
		Location:    location,
		StartTime:   start,
		EndTime:     end,
	}
	event.ICalData = encodeICS(event, now)

	return event, nil
}

// parseDate accepts ISO-like or natural-language dates.
func parseDate(date string) (time.Time, error) {
	trimmed := strings.TrimSpace(date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", types.ErrInvalidDate, date)
}

// applyTime combines a calendar day with a taping time string and
// converts the result to UTC using the fixed per-abbreviation offsets.
func applyTime(day time.Time, timeStr string) (time.Time, error) {
	m := timeRe.FindStringSubmatch(timeStr)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected format like '4:30 PM ET')", types.ErrInvalidTime, timeStr)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	switch strings.ToUpper(m[3]) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}

	offset := tzOffsets[strings.ToUpper(m[4])]

	local := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
	return local.Add(-time.Duration(offset) * time.Hour), nil
}
