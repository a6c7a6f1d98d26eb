package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process session store. It backs tests and local runs
// without Redis; sessions do not survive a restart and have no TTL.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]uint
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]uint)}
}

// Create stores a new session for userID and returns its token.
func (s *MemoryStore) Create(ctx context.Context, userID uint) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.sessions[token] = userID
	s.mu.Unlock()
	return token, nil
}

// Get returns the user id bound to token, or ErrNoSession.
func (s *MemoryStore) Get(ctx context.Context, token string) (uint, error) {
	s.mu.Lock()
	userID, ok := s.sessions[token]
	s.mu.Unlock()
	if !ok {
		return 0, ErrNoSession
	}
	return userID, nil
}

// Delete revokes token.
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
