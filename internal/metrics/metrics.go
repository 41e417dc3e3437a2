package metrics

import (
	"context"
	"net/http"
	"strconv"

	"daily-trivia-service/internal/answer"
	"daily-trivia-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry with runtime collectors and the game counters.
type Metrics struct {
	registry    *prometheus.Registry
	matches     *prometheus.CounterVec
	dayCommits  *prometheus.CounterVec
	pointsDelta prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		matches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trivia_answer_matches_total",
				Help: "Answers judged, by deciding tier and verdict.",
			},
			[]string{"method", "correct"},
		),
		dayCommits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trivia_day_commits_total",
				Help: "Completed days, by number of correct answers.",
			},
			[]string{"correct"},
		),
		pointsDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trivia_day_points_delta",
			Help:    "Net points won or lost per completed day.",
			Buckets: []float64{-10000, -1000, -100, -1, 0, 1, 100, 1000, 10000},
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.matches,
		m.dayCommits,
		m.pointsDelta,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveMatch counts one matcher verdict.
func (m *Metrics) ObserveMatch(res domain.MatchResult) {
	method := string(res.Method)
	if method == "" {
		method = "none"
	}
	m.matches.WithLabelValues(method, strconv.FormatBool(res.Correct)).Inc()
}

// ObserveCommit records a completed day. Its signature fits app.WithCommitHook.
func (m *Metrics) ObserveCommit(_ string, entry domain.DayResult) {
	m.dayCommits.WithLabelValues(strconv.Itoa(entry.CorrectCount())).Inc()
	m.pointsDelta.Observe(float64(entry.PointsAfter - entry.PointsBefore))
}

// Matcher is the subset of answer.Matcher being instrumented.
type Matcher interface {
	Match(ctx context.Context, in answer.Input) domain.MatchResult
}

type instrumentedMatcher struct {
	next    Matcher
	metrics *Metrics
}

// InstrumentMatcher wraps a matcher so every verdict is counted.
func (m *Metrics) InstrumentMatcher(next Matcher) Matcher {
	return instrumentedMatcher{next: next, metrics: m}
}

func (i instrumentedMatcher) Match(ctx context.Context, in answer.Input) domain.MatchResult {
	res := i.next.Match(ctx, in)
	i.metrics.ObserveMatch(res)
	return res
}
