package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"daily-trivia-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a dated question set from a backing store.
type QuestionLoader interface {
	LoadDay(ctx context.Context, date string) (domain.DaySet, error)
}

// QuestionRepository caches day sets with TTL to avoid repeated loader hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedDay
}

type cachedDay struct {
	set       domain.DaySet
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedDay),
	}
}

func (r *QuestionRepository) DaySet(ctx context.Context, date string) (domain.DaySet, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[date]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.set, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(date, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[date]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.set, nil
		}
		r.mu.RUnlock()

		set, err := r.loader.LoadDay(ctx, date)
		if err != nil {
			return domain.DaySet{}, err
		}

		r.mu.Lock()
		r.cache[date] = cachedDay{
			set:       set,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return domain.DaySet{}, err
	}
	return result.(domain.DaySet), nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves day sets from a map keyed by date (tests/demos).
type StaticQuestionLoader struct {
	days map[string]domain.DaySet
}

func NewStaticQuestionLoader(days map[string]domain.DaySet) *StaticQuestionLoader {
	return &StaticQuestionLoader{days: days}
}

func (l *StaticQuestionLoader) LoadDay(_ context.Context, date string) (domain.DaySet, error) {
	if set, ok := l.days[date]; ok {
		return set, nil
	}
	return domain.DaySet{}, domain.ErrNoQuestionToday
}

// LoadQuestionFile reads a questions.json file: a flat list of dated
// questions. Questions sharing a date form that date's set, in file order.
func LoadQuestionFile(path string) (*StaticQuestionLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	return NewStaticQuestionLoader(GroupByDate(questions)), nil
}

// GroupByDate bundles dated questions into day sets.
func GroupByDate(questions []domain.Question) map[string]domain.DaySet {
	days := make(map[string]domain.DaySet)
	for _, q := range questions {
		if q.Date == "" {
			continue
		}
		set := days[q.Date]
		set.Date = q.Date
		if set.Day == 0 {
			set.Day = q.Day
		}
		if q.AlternateAnswers == nil {
			q.AlternateAnswers = []string{}
		}
		set.Questions = append(set.Questions, q)
		days[q.Date] = set
	}
	return days
}
