package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/spec-kit/annotation-auth/internal/domain"
)

type memoryStore struct {
	mu      sync.Mutex
	byValue map[string]*domain.APIToken
	lookups int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byValue: make(map[string]*domain.APIToken)}
}

func (s *memoryStore) FindByValue(_ context.Context, value string) (*domain.APIToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	token, ok := s.byValue[value]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	copied := *token
	return &copied, nil
}

func (s *memoryStore) Insert(_ context.Context, token *domain.APIToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byValue[token.Value]; exists {
		return errors.New("duplicate value")
	}
	copied := *token
	s.byValue[token.Value] = &copied
	return nil
}

// failingStore errors on every call so tests can assert it is never consulted
// or that its failure propagates.
type failingStore struct {
	err   error
	calls int
}

func (s *failingStore) FindByValue(context.Context, string) (*domain.APIToken, error) {
	s.calls++
	return nil, s.err
}

func (s *failingStore) Insert(context.Context, *domain.APIToken) error {
	s.calls++
	return s.err
}
