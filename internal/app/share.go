package app

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPoints renders a point total: billions and millions get a B/M suffix
// with up to two decimals, thousands get comma grouping.
func FormatPoints(n int) string {
	switch {
	case n >= 1_000_000_000:
		return trimZeroCents(float64(n)/1_000_000_000) + "B"
	case n >= 1_000_000:
		return trimZeroCents(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return groupThousands(n)
	}
	return strconv.Itoa(n)
}

func trimZeroCents(f float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(f, 'f', 2, 64), ".00")
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ShareText summarizes a finished day for copy/paste sharing.
func ShareText(v View, categories []string) string {
	lines := []string{fmt.Sprintf("You Sure About That? #%03d", v.Day)}
	wagered := 0
	for i, s := range v.Slots {
		outcome := "Answered Incorrectly"
		switch {
		case s.Correct:
			outcome = "Answered Correctly"
		case s.TimedOut:
			outcome = "Ran Out of Time"
		}
		if len(v.Slots) > 1 {
			outcome = fmt.Sprintf("Q%d: %s", i+1, outcome)
		}
		lines = append(lines, outcome)
		wagered += s.Wager
	}
	if len(categories) > 0 {
		lines = append(lines, "Category: "+strings.Join(categories, " / "))
	}
	lines = append(lines,
		fmt.Sprintf("Wagered: %s pts", FormatPoints(wagered)),
		fmt.Sprintf("Total: %s pts", FormatPoints(v.Points)),
		fmt.Sprintf("Streak: %d days", v.Streak),
		"",
		"Play at yousureabout.that",
	)
	return strings.Join(lines, "\n")
}
