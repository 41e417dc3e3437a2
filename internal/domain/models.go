package domain

import "encoding/json"

// Question is a single free-text trivia clue for a given day.
type Question struct {
	Day              int      `json:"day"`
	Date             string   `json:"date,omitempty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	Answer           string   `json:"answer"`
	AlternateAnswers []string `json:"alternateAnswers"`
}

// DaySet is the read-only bundle of questions scheduled for one date.
// Single-question days carry one entry, multi-question days carry three.
type DaySet struct {
	Day       int        `json:"day"`
	Date      string     `json:"date"`
	Questions []Question `json:"questions"`
}

// MatchMethod names the matcher tier that produced a verdict.
type MatchMethod string

const (
	MethodNone       MatchMethod = ""
	MethodExact      MatchMethod = "exact"
	MethodNormalized MatchMethod = "normalized"
	MethodKeyword    MatchMethod = "keyword"
	MethodWordSet    MatchMethod = "word-set"
	MethodAI         MatchMethod = "ai"
	MethodAIError    MatchMethod = "ai-error"
)

// MarshalJSON encodes MethodNone as null.
func (m MatchMethod) MarshalJSON() ([]byte, error) {
	if m == MethodNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

func (m *MatchMethod) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = MethodNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = MatchMethod(s)
	return nil
}

// MatchResult is the verdict for one answer submission.
type MatchResult struct {
	Correct bool        `json:"correct"`
	Method  MatchMethod `json:"method"`
}

// QuestionOutcome is the committed result of one question slot.
type QuestionOutcome struct {
	Correct  bool        `json:"correct"`
	TimedOut bool        `json:"timedOut"`
	Wager    int         `json:"wager"`
	Method   MatchMethod `json:"method,omitempty"`
}

// DayResult is one append-only history entry.
//
// Correct, TimedOut and Wager are the legacy single-question shape; records
// written before schema version 2 only carry those.
type DayResult struct {
	Day          int               `json:"day"`
	Date         string            `json:"date"`
	Questions    []QuestionOutcome `json:"questions,omitempty"`
	PointsBefore int               `json:"pointsBefore"`
	PointsAfter  int               `json:"pointsAfter"`

	Correct  *bool `json:"correct,omitempty"`
	TimedOut bool  `json:"timedOut,omitempty"`
	Wager    *int  `json:"wager,omitempty"`
}

// CorrectCount returns how many questions in the entry were answered correctly.
func (r DayResult) CorrectCount() int {
	n := 0
	for _, q := range r.Questions {
		if q.Correct {
			n++
		}
	}
	return n
}

// PlayerRecord is the durable per-player progression state.
// Points and counters are never negative.
type PlayerRecord struct {
	SchemaVersion  int         `json:"schemaVersion"`
	Points         int         `json:"points"`
	Streak         int         `json:"streak"`
	TotalCorrect   int         `json:"totalCorrect"`
	TotalPlayed    int         `json:"totalPlayed"`
	LastPlayedDate *string     `json:"lastPlayedDate"`
	LastPlayedDay  *int        `json:"lastPlayedDay"`
	DayStartPoints *int        `json:"dayStartPoints"`
	DayStartedDay  *int        `json:"dayStartedDay"`
	History        []DayResult `json:"history"`
}

// PlayedDay reports whether the given day has already been committed.
func (r PlayerRecord) PlayedDay(day int) bool {
	return r.LastPlayedDay != nil && *r.LastPlayedDay == day
}

// LastResult returns the most recent history entry, if any.
func (r PlayerRecord) LastResult() (DayResult, bool) {
	if len(r.History) == 0 {
		return DayResult{}, false
	}
	return r.History[len(r.History)-1], true
}
