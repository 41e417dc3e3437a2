package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"daily-trivia-service/internal/domain"
	"daily-trivia-service/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// QuestionCache caches day sets in Redis and falls back to a loader on cache miss.
// Sets are stored as a JSON blob: SET trivia:day:{date} {json} EX ttl
type QuestionCache struct {
	client *redis.Client
	loader memory.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionCache) DaySet(ctx context.Context, date string) (domain.DaySet, error) {
	if set, ok := r.cached(ctx, date); ok {
		return set, nil
	}

	result, err, _ := r.sf.Do(date, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if set, ok := r.cached(ctx, date); ok {
			return set, nil
		}

		set, err := r.loader.LoadDay(ctx, date)
		if err != nil {
			return domain.DaySet{}, err
		}

		data, err := json.Marshal(set)
		if err == nil {
			err = r.client.Set(ctx, dayKey(date), data, r.ttlWithJitter()).Err()
		}
		if err != nil {
			logrus.WithError(err).WithField("date", date).Warn("question cache fill failed")
		}
		return set, nil
	})
	if err != nil {
		return domain.DaySet{}, err
	}
	return result.(domain.DaySet), nil
}

func (r *QuestionCache) cached(ctx context.Context, date string) (domain.DaySet, bool) {
	raw, err := r.client.Get(ctx, dayKey(date)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("date", date).Debug("question cache read failed")
		}
		return domain.DaySet{}, false
	}
	var set domain.DaySet
	if err := json.Unmarshal(raw, &set); err != nil || len(set.Questions) == 0 {
		return domain.DaySet{}, false
	}
	return set, true
}

func dayKey(date string) string {
	return "trivia:day:" + date
}

func (r *QuestionCache) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
