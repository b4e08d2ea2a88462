package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBadKey    = errors.New("token key must be 16, 24 or 32 bytes")
	ErrMalformed = errors.New("sealed token is malformed")
)

// sealedPrefix versions the at-rest format: v1.<base64url(nonce|ciphertext)>.
const sealedPrefix = "v1."

// tokenAAD binds sealed values to their purpose; a blob sealed for anything
// else does not open as a token.
var tokenAAD = []byte("ai-showcase-client/auth-token")

// TokenCipher seals the bearer token before it leaves the process.
type TokenCipher interface {
	Seal(token string) (string, error)
	Open(sealed string) (string, error)
}

var (
	_ TokenCipher = (*AESCipher)(nil)
	_ TokenCipher = PlainCipher{}
)

// AESCipher seals with AES-GCM and a fresh nonce per call.
type AESCipher struct {
	aead cipher.AEAD
}

func NewAESCipher(key string) (*AESCipher, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: got %d", ErrBadKey, len(key))
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("token cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("token cipher: %w", err)
	}
	return &AESCipher{aead: aead}, nil
}

func (c *AESCipher) Seal(token string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("token nonce: %w", err)
	}
	out := c.aead.Seal(nonce, nonce, []byte(token), tokenAAD)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(out), nil
}

func (c *AESCipher) Open(sealed string) (string, error) {
	body, ok := strings.CutPrefix(sealed, sealedPrefix)
	if !ok {
		return "", ErrMalformed
	}
	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil || len(data) < c.aead.NonceSize() {
		return "", ErrMalformed
	}
	n := c.aead.NonceSize()
	pt, err := c.aead.Open(nil, data[:n], data[n:], tokenAAD)
	if err != nil {
		return "", fmt.Errorf("open token: %w", err)
	}
	return string(pt), nil
}

// PlainCipher keeps the token as-is. Used when no key is configured.
type PlainCipher struct{}

func (PlainCipher) Seal(s string) (string, error) { return s, nil }
func (PlainCipher) Open(s string) (string, error) { return s, nil }
