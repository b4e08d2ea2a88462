package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ai-showcase-client/internal/domain"
	"ai-showcase-client/internal/domain/ports/repository"
	"ai-showcase-client/internal/infra/security"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

// AuthUseCase manages the single persisted bearer token.
type AuthUseCase interface {
	Login(ctx context.Context, token string) (security.TokenInfo, error)
	Logout(ctx context.Context) error
	// Token returns the token to send, or "" when none is usable.
	Token(ctx context.Context) string
	Status(ctx context.Context) (security.TokenInfo, error)
}

type authUC struct {
	tokens repository.TokenStore
	log    *zerolog.Logger
	now    func() time.Time
}

func NewAuthUseCase(tokens repository.TokenStore, logger *zerolog.Logger) *authUC {
	l := logger.With().Str("component", "AuthUseCase").Logger()
	return &authUC{tokens: tokens, log: &l, now: time.Now}
}

func (a *authUC) Login(ctx context.Context, token string) (security.TokenInfo, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	info, err := security.InspectToken(token)
	if err != nil {
		return security.TokenInfo{}, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if info.Expired(a.now()) {
		return info, domain.ErrTokenExpired
	}
	if err := a.tokens.Set(ctx, token); err != nil {
		return security.TokenInfo{}, fmt.Errorf("store token: %w", err)
	}
	a.log.Info().Str("subject", info.Subject).Bool("jwt", info.IsJWT).Msg("auth token stored")
	return info, nil
}

func (a *authUC) Logout(ctx context.Context) error {
	return a.tokens.Clear(ctx)
}

// Status reports the stored token. Expired tokens are cleared and reported
// as domain.ErrTokenExpired.
func (a *authUC) Status(ctx context.Context) (security.TokenInfo, error) {
	_, info, err := a.load(ctx)
	return info, err
}

func (a *authUC) Token(ctx context.Context) string {
	tok, _, err := a.load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrTokenExpired) {
			a.log.Warn().Err(err).Msg("read auth token")
		}
		return ""
	}
	return tok
}

func (a *authUC) load(ctx context.Context) (string, security.TokenInfo, error) {
	tok, err := a.tokens.Get(ctx)
	if err != nil {
		return "", security.TokenInfo{}, err
	}
	info, err := security.InspectToken(tok)
	if err != nil {
		if cerr := a.tokens.Clear(ctx); cerr != nil {
			a.log.Warn().Err(cerr).Msg("clear unreadable token")
		}
		return "", security.TokenInfo{}, domain.ErrNotFound
	}
	if info.Expired(a.now()) {
		if err := a.tokens.Clear(ctx); err != nil {
			a.log.Warn().Err(err).Msg("clear expired token")
		}
		a.log.Info().Str("subject", info.Subject).Msg("auth token expired; cleared")
		return "", info, domain.ErrTokenExpired
	}
	return tok, info, nil
}
