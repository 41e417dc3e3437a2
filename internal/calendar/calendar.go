package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire form of calendar dates.
const DateLayout = "2006-01-02"

// Calendar computes "today" in a fixed time zone. It is the only place the
// service reads the wall clock for game dates.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// New returns a calendar for the named IANA zone; an empty name means UTC.
func New(zone string) (*Calendar, error) {
	loc := time.UTC
	if zone != "" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("load time zone %q: %w", zone, err)
		}
		loc = l
	}
	return &Calendar{loc: loc, now: time.Now}, nil
}

// Fixed returns a UTC calendar pinned to the given date. Used in tests.
func Fixed(date string) *Calendar {
	t, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		panic(err)
	}
	return &Calendar{loc: time.UTC, now: func() time.Time { return t.Add(12 * time.Hour) }}
}

// WithClock returns a copy of c reading time from now.
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	return &Calendar{loc: c.loc, now: now}
}

// Today returns the current date in the calendar's zone.
func (c *Calendar) Today() string {
	return c.now().In(c.loc).Format(DateLayout)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b string) (int, error) {
	ta, err := time.ParseInLocation(DateLayout, a, time.UTC)
	if err != nil {
		return 0, err
	}
	tb, err := time.ParseInLocation(DateLayout, b, time.UTC)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}
