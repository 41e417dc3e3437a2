package memory

import (
	"context"
	"sync"

	"daily-trivia-service/internal/domain"
)

// PlayerStore keeps raw player records in a map.
type PlayerStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewPlayerStore() *PlayerStore {
	return &PlayerStore{records: make(map[string][]byte)}
}

func (s *PlayerStore) Get(_ context.Context, playerID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.records[playerID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *PlayerStore) Put(_ context.Context, playerID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[playerID] = append([]byte(nil), data...)
	return nil
}
