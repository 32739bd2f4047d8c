package textnorm

import (
	"fmt"
	"strings"
	"time"
)

// Accepted source formats, tried in order. New formats observed in the
// intake sheets are added here, not as branching logic.
var (
	dateLayouts = []string{
		"2006-01-02",
		"02/01/2006",
		"01/02/2006",
	}

	clockLayouts = []string{
		"15:04:05",
		"15:04",
	}

	dateTimeLayouts = []string{
		"2006-01-02T15:04",
		"02/01/2006 15:04:05",
		"2006-01-02 15:04:05",
		"02/01/2006 15:04",
		"2006-01-02 15:04",
	}

	timestampLayouts = []string{
		"02/01/2006 15:04:05",
		"01/02/2006 15:04:05",
		"2006-01-02 15:04:05",
	}
)

// Clock is a time of day with second precision, detached from any date.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// HourLabel returns the two-digit hour bucket key, "00".."23".
func (c Clock) HourLabel() string {
	return fmt.Sprintf("%02d", c.Hour)
}

// Less orders clocks chronologically within one day.
func (c Clock) Less(o Clock) bool {
	if c.Hour != o.Hour {
		return c.Hour < o.Hour
	}
	if c.Minute != o.Minute {
		return c.Minute < o.Minute
	}
	return c.Second < o.Second
}

// ParseDate parses a calendar date in any accepted layout. The result is
// anchored at UTC midnight so dates compare by calendar day only.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ParseClock parses a time of day in any accepted layout.
func ParseClock(s string) (Clock, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Clock{}, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, true
		}
	}
	return Clock{}, false
}

// ParseDateTimeIn parses a combined date-time string as wall time in loc.
// Used for the free-text "estimated arrival" form field.
func ParseDateTimeIn(s string, loc *time.Location) (time.Time, bool) {
	return parseInLocation(s, loc, dateTimeLayouts)
}

// ParseTimestampIn parses a form-submission timestamp as wall time in loc.
func ParseTimestampIn(s string, loc *time.Location) (time.Time, bool) {
	return parseInLocation(s, loc, timestampLayouts)
}

func parseInLocation(s string, loc *time.Location, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
