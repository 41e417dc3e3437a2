package progress

import "daily-trivia-service/internal/domain"

// CurrentSchemaVersion is stamped on every saved record.
const CurrentSchemaVersion = 2

// migration upgrades a record to version. Steps only add fields with safe
// defaults and must be idempotent.
type migration struct {
	version int
	apply   func(r *domain.PlayerRecord)
}

var migrations = []migration{
	// v1: day budget snapshot fields. Unversioned records predate them.
	{version: 1, apply: func(r *domain.PlayerRecord) {
		if r.History == nil {
			r.History = []domain.DayResult{}
		}
		if r.Points < 0 {
			r.Points = 0
		}
		if r.DayStartPoints == nil {
			r.DayStartedDay = nil
		}
	}},
	// v2: history entries carry a per-question outcome list.
	{version: 2, apply: func(r *domain.PlayerRecord) {
		for i := range r.History {
			entry := &r.History[i]
			if len(entry.Questions) > 0 || entry.Correct == nil {
				continue
			}
			wager := 0
			if entry.Wager != nil {
				wager = *entry.Wager
			}
			entry.Questions = []domain.QuestionOutcome{{
				Correct:  *entry.Correct,
				TimedOut: entry.TimedOut,
				Wager:    wager,
			}}
		}
	}},
}

// migrate applies every step newer than the record's stored version.
// Records from a newer schema are left untouched.
func migrate(r *domain.PlayerRecord) (from int) {
	from = r.SchemaVersion
	for _, m := range migrations {
		if m.version <= r.SchemaVersion {
			continue
		}
		m.apply(r)
		r.SchemaVersion = m.version
	}
	return from
}
