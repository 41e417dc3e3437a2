package memory

import (
	"sync"

	"daily-trivia-service/internal/app"
)

// SessionStore is an in-memory implementation of app.ControllerRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.DayController
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
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
	}
}
