package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the client can learn about a bearer token without the
// signing key.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp
	IsJWT     bool
}

// Expired reports whether the token had an exp claim in the past at now.
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// InspectToken reads claims from a JWT without verifying it; the backend is
// the one that verifies. Opaque (non-JWT) tokens yield IsJWT=false and no error.
func InspectToken(token string) (TokenInfo, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return TokenInfo{}, errors.New("empty token")
	}
	if strings.Count(token, ".") != 2 {
		return TokenInfo{}, nil
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		// looks like a jwt but is not one; treat as opaque
		return TokenInfo{}, nil
	}
	info := TokenInfo{Subject: claims.Subject, IsJWT: true}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
