package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"daily-trivia-service/internal/answer"
	"daily-trivia-service/internal/app"
	"daily-trivia-service/internal/calendar"
	"daily-trivia-service/internal/domain"
	"daily-trivia-service/internal/infra/memory"
	"daily-trivia-service/internal/progress"
)

func newTestService(t *testing.T, days map[string]domain.DaySet) (*app.GameService, *manualScheduler) {
	t.Helper()
	cal := calendar.Fixed(today)
	questions := app.NewQuestionService(memory.NewQuestionRepository(memory.NewStaticQuestionLoader(days), 5*time.Minute), cal)
	matcher, err := answer.NewMatcherFromNames(nil, nil)
	if err != nil {
		t.Fatalf("matcher: %v", err)
	}
	records := progress.NewRepository(memory.NewPlayerStore(), cal)
	scheduler := &manualScheduler{}
	svc := app.NewGameService(memory.NewSessionStore(), questions, matcher, records, app.WithScheduler(scheduler))
	return svc, scheduler
}

func TestJoinReusesControllerForTheDay(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, map[string]domain.DaySet{today: tripleDay()})

	c1, err := svc.Join(ctx, "p1")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := c1.PlaceWager(1); err != nil {
		t.Fatalf("wager: %v", err)
	}
	c2, err := svc.Join(ctx, "p1")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if c1 != c2 || c2.View().Phase != app.PhaseQuestion {
		t.Fatalf("expected the in-flight controller to be reused")
	}

	svc.Leave(ctx, c1)
	if c3, _ := svc.Join(ctx, "p1"); c3 != c1 {
		t.Fatalf("leave must keep a controller with a question in flight")
	}
}

func TestJoinWithoutQuestionsReportsError(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	c, err := svc.Join(ctx, "p1")
	if !errors.Is(err, domain.ErrNoQuestionToday) {
		t.Fatalf("expected no question error, got %v", err)
	}
	if c.View().Phase != app.PhaseError {
		t.Fatalf("expected error phase")
	}
	if _, err := svc.Join(ctx, " "); !errors.Is(err, domain.ErrValidationInput) {
		t.Fatalf("expected validation error for blank player, got %v", err)
	}
}

func TestTodayComputesDateEveryCall(t *testing.T) {
	ctx := context.Background()
	day := tripleDay()
	tomorrow := tripleDay()
	tomorrow.Day, tomorrow.Date = 13, "2026-03-11"

	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	cal, _ := calendar.New("UTC")
	cal = cal.WithClock(func() time.Time { return now })
	questions := app.NewQuestionService(memory.NewQuestionRepository(memory.NewStaticQuestionLoader(map[string]domain.DaySet{
		today:        day,
		"2026-03-11": tomorrow,
	}), time.Minute), cal)

	set, err := questions.Today(ctx)
	if err != nil || set.Day != 12 {
		t.Fatalf("expected day 12, got %+v err=%v", set, err)
	}
	now = now.Add(2 * time.Minute)
	set, err = questions.Today(ctx)
	if err != nil || set.Day != 13 {
		t.Fatalf("expected day 13 after midnight, got %+v err=%v", set, err)
	}
}

func TestWagerBoundsReserve(t *testing.T) {
	rules := app.Rules{SingleWagerFloor: 1000}
	cases := []struct {
		budget int
		locked []int
		i, n   int
		lo, hi int
	}{
		{1000, nil, 0, 3, 1, 998},
		{1000, []int{400}, 1, 3, 1, 599},
		{1000, []int{400, 500}, 2, 3, 1, 100},
		{100, []int{50}, 1, 3, 1, 49},
		{0, nil, 0, 3, 1, 1},
		{250, nil, 0, 1, 0, 1000},
		{5000, nil, 0, 1, 0, 5000},
	}
	for _, tc := range cases {
		lo, hi := rules.WagerBounds(tc.budget, tc.locked, tc.i, tc.n)
		if lo != tc.lo || hi != tc.hi {
			t.Fatalf("WagerBounds(%d, %v, %d, %d) = %d..%d, want %d..%d", tc.budget, tc.locked, tc.i, tc.n, lo, hi, tc.lo, tc.hi)
		}
	}
}

func TestFormatPoints(t *testing.T) {
	cases := map[int]string{
		0:             "0",
		999:           "999",
		1000:          "1,000",
		123456:        "123,456",
		1_000_000:     "1M",
		2_500_000:     "2.50M",
		1_000_000_000: "1B",
		1_234_000_000: "1.23B",
	}
	for n, want := range cases {
		if got := app.FormatPoints(n); got != want {
			t.Fatalf("FormatPoints(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestQuestionServiceLimit(t *testing.T) {
	questions := app.NewQuestionService(
		memory.NewQuestionRepository(memory.NewStaticQuestionLoader(map[string]domain.DaySet{today: tripleDay()}), time.Minute),
		calendar.Fixed(today),
	).WithLimit(1)

	set, err := questions.Today(context.Background())
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if len(set.Questions) != 1 || set.Questions[0].Question != tripleDay().Questions[0].Question {
		t.Fatalf("expected only the first question, got %+v", set.Questions)
	}
}

func TestJoinAfterMidnightClosesYesterdaysController(t *testing.T) {
	ctx := context.Background()
	tomorrow := tripleDay()
	tomorrow.Day, tomorrow.Date = 13, "2026-03-11"

	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	cal, _ := calendar.New("UTC")
	cal = cal.WithClock(func() time.Time { return now })
	questions := app.NewQuestionService(memory.NewQuestionRepository(memory.NewStaticQuestionLoader(map[string]domain.DaySet{
		today:        tripleDay(),
		"2026-03-11": tomorrow,
	}), time.Minute), cal)
	matcher, err := answer.NewMatcherFromNames(nil, nil)
	if err != nil {
		t.Fatalf("matcher: %v", err)
	}
	records := progress.NewRepository(memory.NewPlayerStore(), cal)
	svc := app.NewGameService(memory.NewSessionStore(), questions, matcher, records, app.WithScheduler(&manualScheduler{}))

	old, err := svc.Join(ctx, "p1")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := old.PlaceWager(1); err != nil {
		t.Fatalf("wager: %v", err)
	}

	now = now.Add(2 * time.Minute)
	fresh, err := svc.Join(ctx, "p1")
	if err != nil {
		t.Fatalf("join next day: %v", err)
	}
	if fresh == old || fresh.View().Day != 13 {
		t.Fatalf("expected a new controller for day 13")
	}

	if _, err := old.SubmitAnswer(ctx, "Tom Brady"); !errors.Is(err, domain.ErrControllerClosed) {
		t.Fatalf("expected yesterday's controller closed, got %v", err)
	}
	record, _ := records.Load(ctx, "p1")
	if record.DayStartedDay == nil || *record.DayStartedDay != 13 || len(record.History) != 0 {
		t.Fatalf("yesterday's controller must not overwrite today's record: %+v", record)
	}
}

func TestLeaveIgnoresReplacedController(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	first, _ := svc.Join(ctx, "p1")
	svc.Leave(ctx, first)
	second, _ := svc.Join(ctx, "p1")
	if second == first {
		t.Fatalf("expected the idle controller to be dropped on leave")
	}

	svc.Leave(ctx, first)
	if again, _ := svc.Join(ctx, "p1"); again != second {
		t.Fatalf("a stale handle must not drop its replacement")
	}
}
