package redis

import (
	"context"
	"sync"
	"time"

	"daily-trivia-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.ControllerRepository.
// Controllers own timers and subscribers, so they stay in a local map;
// Redis only carries a liveness marker per player-day.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.DayController
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.DayController),
	}
}

func (s *SessionStore) GetOrCreate(key string, create func() *app.DayController) *app.DayController {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[key]; ok {
		return session
	}
	session := create()
	s.sessions[key] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(key), "1", s.ttl).Err()
	return session
}

func (s *SessionStore) Get(key string) (*app.DayController, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[key]
	return session, ok
}

func (s *SessionStore) DeleteIfIdle(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	if !ok {
		return
	}
	if session.Idle() {
		session.Close()
		delete(s.sessions, key)
		_ = s.client.Del(context.Background(), s.key(key)).Err()
	}
}

func (s *SessionStore) key(key string) string {
	return "trivia:session:" + key
}
