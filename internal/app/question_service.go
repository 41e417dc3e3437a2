package app

import (
	"context"
	"errors"
	"fmt"

	"daily-trivia-service/internal/calendar"
	"daily-trivia-service/internal/domain"
)

// QuestionRepository loads dated question sets (from cache/backing store).
type QuestionRepository interface {
	DaySet(ctx context.Context, date string) (domain.DaySet, error)
}

// QuestionService serves the set scheduled for today. The date is computed
// on every call and never cached.
type QuestionService struct {
	repo     QuestionRepository
	calendar *calendar.Calendar
	limit    int
}

func NewQuestionService(repo QuestionRepository, cal *calendar.Calendar) *QuestionService {
	return &QuestionService{repo: repo, calendar: cal}
}

// WithLimit caps how many of the day's questions are served. Zero serves all.
func (s *QuestionService) WithLimit(n int) *QuestionService {
	s.limit = n
	return s
}

// Today returns today's set. domain.ErrNoQuestionToday is returned when
// nothing is scheduled; any other failure wraps domain.ErrProviderUnavailable.
func (s *QuestionService) Today(ctx context.Context) (domain.DaySet, error) {
	date := s.calendar.Today()
	set, err := s.repo.DaySet(ctx, date)
	if err != nil {
		if errors.Is(err, domain.ErrNoQuestionToday) {
			return domain.DaySet{}, err
		}
		return domain.DaySet{}, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if len(set.Questions) == 0 {
		return domain.DaySet{}, domain.ErrNoQuestionToday
	}
	if s.limit > 0 && len(set.Questions) > s.limit {
		set.Questions = set.Questions[:s.limit]
	}
	if set.Date == "" {
		set.Date = date
	}
	if set.Day == 0 {
		set.Day = set.Questions[0].Day
	}
	return set, nil
}

// Date returns the service's current calendar date.
func (s *QuestionService) Date() string {
	return s.calendar.Today()
}
