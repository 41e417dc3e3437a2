package calendar

import (
	"testing"
	"time"
)

func TestTodayUsesZone(t *testing.T) {
	cal, err := New("Pacific/Auckland")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	instant := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	cal = cal.WithClock(func() time.Time { return instant })
	if got := cal.Today(); got != "2026-03-02" {
		t.Fatalf("expected next day in Auckland, got %s", got)
	}

	utc, _ := New("")
	utc = utc.WithClock(func() time.Time { return instant })
	if got := utc.Today(); got != "2026-03-01" {
		t.Fatalf("expected UTC date, got %s", got)
	}
}

func TestDaysBetween(t *testing.T) {
	n, err := DaysBetween("2026-02-27", "2026-03-02")
	if err != nil {
		t.Fatalf("days between: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 days, got %d", n)
	}
	if _, err := DaysBetween("yesterday", "2026-03-02"); err == nil {
		t.Fatalf("expected parse error")
	}
}
