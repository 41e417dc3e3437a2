package redis

import (
	"context"
	"errors"
	"fmt"

	"daily-trivia-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// PlayerStore keeps serialized player records under trivia:player:{id}.
// Records never expire; a missed day is handled by the streak rules, not by TTL.
type PlayerStore struct {
	client *redis.Client
}

func NewPlayerStore(client *redis.Client) *PlayerStore {
	return &PlayerStore{client: client}
}

func (s *PlayerStore) Get(ctx context.Context, playerID string) ([]byte, error) {
	data, err := s.client.Get(ctx, playerKey(playerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return data, nil
}

func (s *PlayerStore) Put(ctx context.Context, playerID string, data []byte) error {
	if err := s.client.Set(ctx, playerKey(playerID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

func playerKey(playerID string) string {
	return "trivia:player:" + playerID
}
