package progress

import (
	"fmt"
	"slices"

	"daily-trivia-service/internal/domain"
)

// NewRecord returns a zeroed record at the current schema version.
func NewRecord() domain.PlayerRecord {
	return domain.PlayerRecord{
		SchemaVersion: CurrentSchemaVersion,
		History:       []domain.DayResult{},
	}
}

// SnapshotDayBudget records the wager budget the first time a day is seen.
// Calling it again for the same day is a no-op.
func SnapshotDayBudget(r domain.PlayerRecord, day int) domain.PlayerRecord {
	if r.DayStartedDay != nil && *r.DayStartedDay == day {
		return r
	}
	points, d := r.Points, day
	r.DayStartPoints = &points
	r.DayStartedDay = &d
	return r
}

// DayBudget returns the snapshot for day, falling back to current points when
// no snapshot exists for it.
func DayBudget(r domain.PlayerRecord, day int) int {
	if r.DayStartPoints != nil && r.DayStartedDay != nil && *r.DayStartedDay == day {
		return *r.DayStartPoints
	}
	return r.Points
}

// CommitDay settles a fully played day. It is the only place the streak
// advances.
func CommitDay(r domain.PlayerRecord, day int, date string, results, timedOuts []bool, wagers []int) (domain.PlayerRecord, error) {
	n := len(results)
	if n == 0 || len(timedOuts) != n || len(wagers) != n {
		return r, fmt.Errorf("%w: %d results, %d timeouts, %d wagers", domain.ErrInvalidCommit, n, len(timedOuts), len(wagers))
	}
	if r.PlayedDay(day) {
		return r, fmt.Errorf("%w: day %d", domain.ErrDayAlreadyCommitted, day)
	}

	before := DayBudget(r, day)
	change, correct := 0, 0
	outcomes := make([]domain.QuestionOutcome, n)
	for i := range results {
		if wagers[i] < 0 {
			return r, fmt.Errorf("%w: negative wager at %d", domain.ErrInvalidCommit, i)
		}
		if results[i] {
			change += wagers[i]
			correct++
		} else {
			change -= wagers[i]
		}
		outcomes[i] = domain.QuestionOutcome{Correct: results[i], TimedOut: timedOuts[i], Wager: wagers[i]}
	}
	after := max(0, before+change)

	playedDate, playedDay := date, day
	r.Points = after
	r.Streak++
	r.TotalCorrect += correct
	r.TotalPlayed += n
	r.LastPlayedDate = &playedDate
	r.LastPlayedDay = &playedDay
	r.DayStartPoints = nil
	r.DayStartedDay = nil
	r.History = append(slices.Clone(r.History), domain.DayResult{
		Day:          day,
		Date:         date,
		Questions:    outcomes,
		PointsBefore: before,
		PointsAfter:  after,
	})
	return r, nil
}

// CommitOutcomes is CommitDay for fully resolved question outcomes; the match
// method of each slot is kept in the history entry.
func CommitOutcomes(r domain.PlayerRecord, day int, date string, outcomes []domain.QuestionOutcome) (domain.PlayerRecord, error) {
	results := make([]bool, len(outcomes))
	timedOuts := make([]bool, len(outcomes))
	wagers := make([]int, len(outcomes))
	for i, o := range outcomes {
		results[i], timedOuts[i], wagers[i] = o.Correct, o.TimedOut, o.Wager
	}
	committed, err := CommitDay(r, day, date, results, timedOuts, wagers)
	if err != nil {
		return r, err
	}
	last := len(committed.History) - 1
	for i, o := range outcomes {
		committed.History[last].Questions[i].Method = o.Method
	}
	return committed, nil
}
