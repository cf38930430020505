package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/SAP-F-2025/screening-service/internal/models"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemoryStore is the Redis-free store used in tests and when no Redis
// URL is configured. Sessions are stored as JSON so reads return copies,
// matching the Redis store's semantics.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string][]byte)}
}

func (s *memoryStore) Save(_ context.Context, session *models.ScreeningSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = data
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*models.ScreeningSession, error) {
	s.mu.RLock()
	data, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var session models.ScreeningSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
	}
	return &session, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
