package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-showcase-client/internal/domain"
	"ai-showcase-client/internal/domain/ports/repository"
	"ai-showcase-client/internal/infra/security"

	"github.com/go-redis/redis/v8"
)

var _ repository.TokenStore = (*TokenStore)(nil)

// TokenStore keeps the auth token under auth_token:<profile>, sealed by the
// configured cipher.
type TokenStore struct {
	client RedisClient
	cipher security.TokenCipher
	key    string
	ttl    time.Duration
}

func NewTokenStore(client RedisClient, cipher security.TokenCipher, profile string, ttl time.Duration) *TokenStore {
	if cipher == nil {
		cipher = security.PlainCipher{}
	}
	return &TokenStore{
		client: client,
		cipher: cipher,
		key:    "auth_token:" + profile,
		ttl:    ttl,
	}
}

func (s *TokenStore) Get(ctx context.Context) (string, error) {
	sealed, err := s.client.Get(ctx, s.key)
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	tok, err := s.cipher.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("open token: %w", err)
	}
	return tok, nil
}

func (s *TokenStore) Set(ctx context.Context, token string) error {
	sealed, err := s.cipher.Seal(token)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	return s.client.Set(ctx, s.key, sealed, s.ttl)
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key)
}
