package memory

import (
	"context"
	"sync"

	"ai-showcase-client/internal/domain"
	"ai-showcase-client/internal/domain/ports/repository"
)

var _ repository.TokenStore = (*TokenStore)(nil)

// TokenStore keeps the token for the life of the process only.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewTokenStore() *TokenStore { return &TokenStore{} }

func (s *TokenStore) Get(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", domain.ErrNotFound
	}
	return s.token, nil
}

func (s *TokenStore) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return s.Set(ctx, "")
}
