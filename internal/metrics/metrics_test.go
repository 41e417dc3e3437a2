package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"daily-trivia-service/internal/answer"
	"daily-trivia-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentMatcherCountsVerdicts(t *testing.T) {
	m := New()
	matcher := m.InstrumentMatcher(answer.NewMatcher(answer.ExactTier(), answer.NormalizedTier()))

	matcher.Match(context.Background(), answer.Input{UserAnswer: "Mars", CorrectAnswer: "mars"})
	matcher.Match(context.Background(), answer.Input{UserAnswer: "Venus", CorrectAnswer: "mars"})

	if got := testutil.ToFloat64(m.matches.WithLabelValues("exact", "true")); got != 1 {
		t.Fatalf("expected one exact match, got %v", got)
	}
	if got := testutil.ToFloat64(m.matches.WithLabelValues("none", "false")); got != 1 {
		t.Fatalf("expected one miss, got %v", got)
	}
}

func TestObserveCommitAndHandler(t *testing.T) {
	m := New()
	m.ObserveCommit("p1", domain.DayResult{
		Day:          3,
		PointsBefore: 1000,
		PointsAfter:  1400,
		Questions: []domain.QuestionOutcome{
			{Correct: true, Wager: 400},
			{Correct: false, TimedOut: true, Wager: 1},
		},
	})
	if got := testutil.ToFloat64(m.dayCommits.WithLabelValues("1")); got != 1 {
		t.Fatalf("expected one commit with one correct, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "trivia_day_commits_total") {
		t.Fatalf("expected commit counter in exposition output")
	}
}
