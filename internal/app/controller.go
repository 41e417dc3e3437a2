package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"daily-trivia-service/internal/answer"
	"daily-trivia-service/internal/domain"
	"daily-trivia-service/internal/progress"
	"github.com/sirupsen/logrus"
)

// Phase is a state of the day's play.
type Phase string

const (
	PhaseLoading     Phase = "loading"
	PhaseError       Phase = "error"
	PhaseWager       Phase = "wager"
	PhaseQuestion    Phase = "question"
	PhaseInterResult Phase = "inter-result"
	PhaseResult      Phase = "result"
)

// QuestionSource supplies today's question set.
type QuestionSource interface {
	Today(ctx context.Context) (domain.DaySet, error)
}

// AnswerMatcher judges one free-text answer.
type AnswerMatcher interface {
	Match(ctx context.Context, in answer.Input) domain.MatchResult
}

// RecordRepository loads and saves the durable player record.
type RecordRepository interface {
	Load(ctx context.Context, playerID string) (domain.PlayerRecord, progress.LoadReport)
	Save(ctx context.Context, playerID string, record domain.PlayerRecord)
	Today() string
}

// SlotView is the public state of one question slot.
type SlotView struct {
	Wager    int                `json:"wager"`
	Locked   bool               `json:"locked"`
	Resolved bool               `json:"resolved"`
	Correct  bool               `json:"correct"`
	TimedOut bool               `json:"timedOut"`
	Method   domain.MatchMethod `json:"method,omitempty"`
	Answer   string             `json:"answer,omitempty"`
}

// View is a snapshot of the controller for rendering.
type View struct {
	PlayerID      string     `json:"playerId"`
	Phase         Phase      `json:"phase"`
	Day           int        `json:"day"`
	Date          string     `json:"date"`
	Index         int        `json:"index"`
	Total         int        `json:"total"`
	Category      string     `json:"category,omitempty"`
	Question      string     `json:"question,omitempty"`
	MinWager      int        `json:"minWager"`
	MaxWager      int        `json:"maxWager"`
	DayBudget     int        `json:"dayBudget"`
	Remaining     int        `json:"remaining"`
	Checking      bool       `json:"checking"`
	Points        int        `json:"points"`
	Streak        int        `json:"streak"`
	TotalCorrect  int        `json:"totalCorrect"`
	TotalPlayed   int        `json:"totalPlayed"`
	StreakLost    bool       `json:"streakLost"`
	AlreadyPlayed bool       `json:"alreadyPlayed"`
	Slots         []SlotView `json:"slots"`
	Error         string     `json:"error,omitempty"`
}

type slot struct {
	wager    int
	locked   bool
	resolved bool
	outcome  domain.QuestionOutcome
}

// DayController drives one player's play of one day:
// wager(i) -> question(i) -> inter-result(i) -> wager(i+1) ... -> result.
type DayController struct {
	key       string
	playerID  string
	questions QuestionSource
	matcher   AnswerMatcher
	records   RecordRepository
	scheduler Scheduler
	rules     Rules
	onCommit  func(playerID string, entry domain.DayResult)

	mu            sync.Mutex
	phase         Phase
	set           domain.DaySet
	record        domain.PlayerRecord
	streakLost    bool
	alreadyPlayed bool
	index         int
	slots         []slot
	remaining     int
	checking      bool
	stopTimer     func()
	attempt       uint64
	fetchErr      string
	closed        bool
	subscribers   map[chan View]struct{}
}

// ControllerOption customizes a DayController.
type ControllerOption func(*DayController)

// WithScheduler replaces the wall-clock countdown scheduler.
func WithScheduler(s Scheduler) ControllerOption {
	return func(c *DayController) { c.scheduler = s }
}

// WithRules overrides timer and wager parameters.
func WithRules(r Rules) ControllerOption {
	return func(c *DayController) { c.rules = r.withDefaults() }
}

// WithCommitHook registers a callback invoked after a day is committed.
func WithCommitHook(fn func(playerID string, entry domain.DayResult)) ControllerOption {
	return func(c *DayController) { c.onCommit = fn }
}

func NewDayController(playerID string, questions QuestionSource, matcher AnswerMatcher, records RecordRepository, opts ...ControllerOption) *DayController {
	c := &DayController{
		playerID:    playerID,
		questions:   questions,
		matcher:     matcher,
		records:     records,
		scheduler:   TickerScheduler{},
		rules:       Rules{}.withDefaults(),
		phase:       PhaseLoading,
		subscribers: make(map[chan View]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Begin fetches today's questions and loads the player record. It is a no-op
// once play has started and acts as retry from the error phase.
func (c *DayController) Begin(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrControllerClosed
	}
	if c.phase != PhaseLoading && c.phase != PhaseError {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	set, err := c.questions.Today(ctx)
	if err != nil {
		c.mu.Lock()
		if c.phase == PhaseLoading || c.phase == PhaseError {
			c.phase = PhaseError
			c.fetchErr = err.Error()
			c.broadcastLocked()
		}
		c.mu.Unlock()
		if !errors.Is(err, domain.ErrNoQuestionToday) && !errors.Is(err, domain.ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		}
		return err
	}

	record, report := c.records.Load(ctx, c.playerID)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrControllerClosed
	}
	if c.phase != PhaseLoading && c.phase != PhaseError {
		// a concurrent Begin already started the day
		c.mu.Unlock()
		return nil
	}
	c.set = set
	c.streakLost = report.StreakLost
	c.fetchErr = ""
	c.index = 0
	c.slots = make([]slot, len(set.Questions))

	if record.PlayedDay(set.Day) {
		c.record = record
		c.rehydrateLocked()
		c.broadcastLocked()
		c.mu.Unlock()
		return nil
	}

	c.record = progress.SnapshotDayBudget(record, set.Day)
	c.phase = PhaseWager
	snapshot := c.record
	c.broadcastLocked()
	c.mu.Unlock()

	c.records.Save(ctx, c.playerID, snapshot)
	return nil
}

// rehydrateLocked restores the terminal view of an already committed day
// from history without touching points.
func (c *DayController) rehydrateLocked() {
	c.alreadyPlayed = true
	c.phase = PhaseResult
	c.index = len(c.slots) - 1
	for i := len(c.record.History) - 1; i >= 0; i-- {
		entry := c.record.History[i]
		if entry.Day != c.set.Day {
			continue
		}
		for j, q := range entry.Questions {
			if j >= len(c.slots) {
				break
			}
			c.slots[j] = slot{wager: q.Wager, locked: true, resolved: true, outcome: q}
		}
		return
	}
}

// PlaceWager locks the wager for the current question and starts its
// countdown.
func (c *DayController) PlaceWager(w int) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.viewLocked(), domain.ErrControllerClosed
	}
	if c.phase != PhaseWager {
		return c.viewLocked(), domain.ErrWrongPhase
	}
	lo, hi := c.wagerBoundsLocked()
	if w < lo || w > hi {
		return c.viewLocked(), fmt.Errorf("%w: %d not in [%d, %d]", domain.ErrInvalidWager, w, lo, hi)
	}

	s := &c.slots[c.index]
	s.wager = w
	s.locked = true
	c.phase = PhaseQuestion
	c.remaining = c.rules.TimerSeconds
	c.attempt++
	token := c.attempt
	c.stopTimer = c.scheduler.Every(time.Second, func() { c.tick(token) })
	return c.broadcastLocked(), nil
}

func (c *DayController) tick(token uint64) {
	c.mu.Lock()
	if token != c.attempt || c.phase != PhaseQuestion || c.slots[c.index].resolved {
		c.mu.Unlock()
		return
	}
	c.remaining--
	if c.remaining > 0 {
		c.broadcastLocked()
		c.mu.Unlock()
		return
	}
	c.remaining = 0
	committed := c.resolveLocked(domain.QuestionOutcome{
		Correct:  false,
		TimedOut: true,
		Wager:    c.slots[c.index].wager,
	})
	c.mu.Unlock()
	c.persist(context.Background(), committed)
}

// SubmitAnswer judges the player's answer for the current question. If the
// countdown resolves the slot while the answer is being judged, the late
// verdict is dropped and ErrSlotResolved is returned.
func (c *DayController) SubmitAnswer(ctx context.Context, text string) (View, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return c.View(), domain.ErrEmptyAnswer
	}

	c.mu.Lock()
	if c.closed {
		defer c.mu.Unlock()
		return c.viewLocked(), domain.ErrControllerClosed
	}
	if c.phase != PhaseQuestion {
		defer c.mu.Unlock()
		return c.viewLocked(), domain.ErrWrongPhase
	}
	if c.slots[c.index].resolved {
		defer c.mu.Unlock()
		return c.viewLocked(), domain.ErrSlotResolved
	}
	if c.checking {
		defer c.mu.Unlock()
		return c.viewLocked(), domain.ErrCheckInProgress
	}
	c.checking = true
	token := c.attempt
	q := c.set.Questions[c.index]
	c.broadcastLocked()
	c.mu.Unlock()

	res := c.matcher.Match(ctx, answer.Input{
		UserAnswer:       text,
		CorrectAnswer:    q.Answer,
		AlternateAnswers: q.AlternateAnswers,
		Question:         q.Question,
		Category:         q.Category,
	})

	c.mu.Lock()
	if c.closed || token != c.attempt || c.phase != PhaseQuestion || c.slots[c.index].resolved {
		defer c.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"player": c.playerID,
			"day":    c.set.Day,
		}).Debug("dropping verdict for an already resolved question")
		return c.viewLocked(), domain.ErrSlotResolved
	}
	committed := c.resolveLocked(domain.QuestionOutcome{
		Correct: res.Correct,
		Method:  res.Method,
		Wager:   c.slots[c.index].wager,
	})
	view := c.viewLocked()
	c.mu.Unlock()

	c.persist(ctx, committed)
	return view, nil
}

// resolveLocked settles the current slot. It returns the committed record
// when the day is complete.
func (c *DayController) resolveLocked(outcome domain.QuestionOutcome) *domain.PlayerRecord {
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	c.attempt++
	c.checking = false

	s := &c.slots[c.index]
	s.resolved = true
	s.outcome = outcome

	if c.index < len(c.slots)-1 {
		c.phase = PhaseInterResult
		c.broadcastLocked()
		return nil
	}

	outcomes := make([]domain.QuestionOutcome, len(c.slots))
	for i, sl := range c.slots {
		outcomes[i] = sl.outcome
	}
	c.phase = PhaseResult
	committed, err := progress.CommitOutcomes(c.record, c.set.Day, c.records.Today(), outcomes)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"player": c.playerID,
			"day":    c.set.Day,
		}).Warnf("commit day: %v", err)
		c.broadcastLocked()
		return nil
	}
	c.record = committed
	c.broadcastLocked()

	if c.onCommit != nil {
		if entry, ok := committed.LastResult(); ok {
			c.onCommit(c.playerID, entry)
		}
	}
	return &committed
}

func (c *DayController) persist(ctx context.Context, record *domain.PlayerRecord) {
	if record == nil {
		return
	}
	c.records.Save(ctx, c.playerID, *record)
}

// Advance acknowledges an intermediate result and moves to the next wager.
func (c *DayController) Advance() (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.viewLocked(), domain.ErrControllerClosed
	}
	if c.phase != PhaseInterResult {
		return c.viewLocked(), domain.ErrWrongPhase
	}
	c.index++
	c.phase = PhaseWager
	c.remaining = 0
	return c.broadcastLocked(), nil
}

// View returns the current snapshot.
func (c *DayController) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Date returns the date of the loaded day set.
func (c *DayController) Date() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set.Date
}

// Idle reports whether dropping the controller loses no in-flight state.
// A closed controller is always idle.
func (c *DayController) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	if len(c.subscribers) > 0 {
		return false
	}
	return c.phase == PhaseResult || c.phase == PhaseError || c.phase == PhaseLoading
}

// Close stops the countdown and ends all subscriptions. A closed controller
// rejects further play and never saves the player record again.
func (c *DayController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	c.attempt++
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

func (c *DayController) wagerBoundsLocked() (int, int) {
	locked := make([]int, len(c.slots))
	for i, s := range c.slots {
		locked[i] = s.wager
	}
	return c.rules.WagerBounds(progress.DayBudget(c.record, c.set.Day), locked, c.index, len(c.slots))
}

func (c *DayController) viewLocked() View {
	v := View{
		PlayerID:      c.playerID,
		Phase:         c.phase,
		Day:           c.set.Day,
		Date:          c.set.Date,
		Index:         c.index,
		Total:         len(c.slots),
		Remaining:     c.remaining,
		Checking:      c.checking,
		Points:        c.record.Points,
		Streak:        c.record.Streak,
		TotalCorrect:  c.record.TotalCorrect,
		TotalPlayed:   c.record.TotalPlayed,
		StreakLost:    c.streakLost,
		AlreadyPlayed: c.alreadyPlayed,
		Error:         c.fetchErr,
	}
	if c.phase == PhaseLoading || c.phase == PhaseError {
		return v
	}

	v.DayBudget = progress.DayBudget(c.record, c.set.Day)
	if c.phase == PhaseResult {
		if entry, ok := c.record.LastResult(); ok && entry.Day == c.set.Day {
			v.DayBudget = entry.PointsBefore
		}
	}
	q := c.set.Questions[c.index]
	v.Category = q.Category
	switch c.phase {
	case PhaseWager:
		v.MinWager, v.MaxWager = c.wagerBoundsLocked()
	case PhaseQuestion, PhaseInterResult, PhaseResult:
		v.Question = q.Question
	}

	v.Slots = make([]SlotView, len(c.slots))
	for i, s := range c.slots {
		sv := SlotView{Wager: s.wager, Locked: s.locked, Resolved: s.resolved}
		if s.resolved {
			sv.Correct = s.outcome.Correct
			sv.TimedOut = s.outcome.TimedOut
			sv.Method = s.outcome.Method
			sv.Answer = c.set.Questions[i].Answer
		}
		v.Slots[i] = sv
	}
	return v
}

// Subscribe returns a channel receiving a view after every state change.
// The caller must invoke the returned cancel function to avoid leaks.
func (c *DayController) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 8)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	// the buffer is empty here, so this send cannot block
	ch <- c.viewLocked()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *DayController) broadcastLocked() View {
	v := c.viewLocked()
	for ch := range c.subscribers {
		select {
		case ch <- v:
		default:
			// drop the stale view so slow readers never block play
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
	return v
}

// ShareText returns the shareable summary of a finished day.
func (c *DayController) ShareText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseResult {
		return "", domain.ErrWrongPhase
	}
	categories := make([]string, 0, len(c.set.Questions))
	for _, q := range c.set.Questions {
		if q.Category != "" {
			categories = append(categories, q.Category)
		}
	}
	return ShareText(c.viewLocked(), categories), nil
}
