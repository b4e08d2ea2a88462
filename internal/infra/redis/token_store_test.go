//go:build !integration

package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-showcase-client/internal/domain"
	"ai-showcase-client/internal/infra/security"

	"github.com/go-redis/redis/v8"
)

// memRedis is an in-memory RedisClient.
type memRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memRedis) Ping(ctx context.Context) error { return nil }
func (m *memRedis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	m.ttls[key] = exp
	return nil
}
func (m *memRedis) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}
func (m *memRedis) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
func (m *memRedis) Close() error { return nil }

func TestTokenStore_SealedRoundTrip(t *testing.T) {
	ctx := context.Background()
	cli := newMemRedis()
	enc, err := security.NewAESCipher("0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	ts := NewTokenStore(cli, enc, "default", time.Hour)

	if _, err := ts.Get(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound on empty store, got %v", err)
	}
	if err := ts.Set(ctx, "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if raw := cli.data["auth_token:default"]; raw == "" || raw == "tok-1" {
		t.Fatalf("token must be stored sealed, got %q", raw)
	}
	if cli.ttls["auth_token:default"] != time.Hour {
		t.Fatalf("ttl not applied: %v", cli.ttls)
	}
	got, err := ts.Get(ctx)
	if err != nil || got != "tok-1" {
		t.Fatalf("get: %q %v", got, err)
	}
	if err := ts.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := ts.Get(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound after clear, got %v", err)
	}
}

func TestTokenStore_PlainByDefault(t *testing.T) {
	cli := newMemRedis()
	ts := NewTokenStore(cli, nil, "p2", 0)
	_ = ts.Set(context.Background(), "opaque")
	if cli.data["auth_token:p2"] != "opaque" {
		t.Fatalf("plain cipher should store as-is: %v", cli.data)
	}
}
