package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shinyyama/rewards-backend/internal/clock"
)

// Revoker remembers logged-out token ids until the token would have expired.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RedisRevoker struct {
	client *redis.Client
	clock  clock.Clock
}

func NewRedisRevoker(client *redis.Client, clk clock.Clock) *RedisRevoker {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &RedisRevoker{client: client, clock: clk}
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.clock.Now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevoker is used when no Redis is configured. State is per process.
type MemoryRevoker struct {
	mu    sync.Mutex
	until map[string]time.Time
	clock clock.Clock
}

func NewMemoryRevoker(clk clock.Clock) *MemoryRevoker {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &MemoryRevoker{until: make(map[string]time.Time), clock: clk}
}

func (m *MemoryRevoker) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	for k, exp := range m.until {
		if !exp.After(now) {
			delete(m.until, k)
		}
	}
	if expiresAt.After(now) {
		m.until[jti] = expiresAt
	}
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.until[jti]
	return ok && exp.After(m.clock.Now()), nil
}
