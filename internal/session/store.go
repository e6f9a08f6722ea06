// Package session maps opaque cookie tokens to user identities.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// Store is the server-side half of a session. The cookie only ever carries the token.
type Store interface {
	Create(ctx context.Context, userID uint, ttl time.Duration) (string, error)
	Lookup(ctx context.Context, token string) (uint, error)
	Delete(ctx context.Context, token string) error
}

func newToken() string {
	return uuid.NewString()
}

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore keeps sessions in Redis so they survive restarts and are shared between instances.
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func (s *redisStore) Create(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	token := newToken()
	if err := s.rdb.Set(ctx, redisKey(token), userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

func (s *redisStore) Lookup(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, ErrSessionNotFound
	}

	val, err := s.rdb.Get(ctx, redisKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load session: %w", err)
	}

	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	return uint(id), nil
}

func (s *redisStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, redisKey(token)).Err()
}

func redisKey(token string) string {
	return "session:" + token
}

type memoryEntry struct {
	userID    uint
	expiresAt time.Time
}

type memoryStore struct {
	entries *xsync.MapOf[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryStore keeps sessions in process memory. Used when no Redis is configured and in tests.
func NewMemoryStore() Store {
	return newMemoryStore(time.Now)
}

func newMemoryStore(now func() time.Time) *memoryStore {
	return &memoryStore{
		entries: xsync.NewMapOf[memoryEntry](),
		now:     now,
	}
}

func (s *memoryStore) Create(_ context.Context, userID uint, ttl time.Duration) (string, error) {
	token := newToken()
	s.entries.Store(token, memoryEntry{userID: userID, expiresAt: s.now().Add(ttl)})
	return token, nil
}

func (s *memoryStore) Lookup(_ context.Context, token string) (uint, error) {
	entry, ok := s.entries.Load(token)
	if !ok {
		return 0, ErrSessionNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		s.entries.Delete(token)
		return 0, ErrSessionNotFound
	}
	return entry.userID, nil
}

func (s *memoryStore) Delete(_ context.Context, token string) error {
	s.entries.Delete(token)
	return nil
}
