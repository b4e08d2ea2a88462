package repository

import "context"

// TokenStore persists the single client-side auth token.
// Get returns domain.ErrNotFound when no token is stored.
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
