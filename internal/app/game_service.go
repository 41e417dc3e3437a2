package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"daily-trivia-service/internal/answer"
	"daily-trivia-service/internal/domain"
)

// ControllerRepository abstracts where live day controllers are kept
// (in-memory, Redis-marked, etc).
type ControllerRepository interface {
	GetOrCreate(key string, create func() *DayController) *DayController
	Get(key string) (*DayController, bool)
	DeleteIfIdle(key string)
}

// GameService contains the player-facing use cases.
type GameService struct {
	controllers ControllerRepository
	questions   *QuestionService
	matcher     AnswerMatcher
	records     RecordRepository
	opts        []ControllerOption

	mu      sync.Mutex
	current map[string]string // player -> controller key
}

func NewGameService(controllers ControllerRepository, questions *QuestionService, matcher AnswerMatcher, records RecordRepository, opts ...ControllerOption) *GameService {
	return &GameService{
		controllers: controllers,
		questions:   questions,
		matcher:     matcher,
		records:     records,
		opts:        opts,
		current:     make(map[string]string),
	}
}

// ControllerKey identifies a player's controller for one date.
func ControllerKey(playerID, date string) string {
	return playerID + "|" + date
}

// Join returns the player's controller for today, starting the day if
// needed. A controller left over from an earlier date is closed first so it
// can no longer save the player record. A fetch failure leaves the
// controller in the error phase; joining again retries.
func (s *GameService) Join(ctx context.Context, playerID string) (*DayController, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: missing player id", domain.ErrValidationInput)
	}
	key := ControllerKey(playerID, s.questions.Date())

	s.mu.Lock()
	stale, ok := s.current[playerID]
	s.current[playerID] = key
	s.mu.Unlock()
	if ok && stale != key {
		if old, found := s.controllers.Get(stale); found {
			old.Close()
		}
		s.controllers.DeleteIfIdle(stale)
	}

	c := s.controllers.GetOrCreate(key, func() *DayController {
		opts := append([]ControllerOption{withKey(key)}, s.opts...)
		return NewDayController(playerID, s.questions, s.matcher, s.records, opts...)
	})
	return c, c.Begin(ctx)
}

// Leave drops the controller when it holds no in-flight state. A handle to
// a controller that was already replaced under the same key is ignored.
func (s *GameService) Leave(_ context.Context, c *DayController) {
	if c == nil || c.key == "" {
		return
	}
	if current, ok := s.controllers.Get(c.key); !ok || current != c {
		return
	}
	s.controllers.DeleteIfIdle(c.key)
}

// Validate runs the matcher on a standalone answer.
func (s *GameService) Validate(ctx context.Context, in answer.Input) domain.MatchResult {
	return s.matcher.Match(ctx, in)
}

// Today returns today's question set.
func (s *GameService) Today(ctx context.Context) (domain.DaySet, error) {
	return s.questions.Today(ctx)
}

func withKey(key string) ControllerOption {
	return func(c *DayController) { c.key = key }
}
