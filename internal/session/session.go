package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/redis/go-redis/v9"
)

var ErrEmptySessionID = errors.New("session id is empty")

// Store holds one authenticated flag per browser session.
type Store interface {
	IsAuthenticated(ctx context.Context, sessionID string) (bool, error)
	SetAuthenticated(ctx context.Context, sessionID string) error
}

func flagKey(prefix, sessionID string) string {
	return prefix + ":" + sessionID
}

// MemoryStore keeps flags in process. Entries older than ttl read as unset.
type MemoryStore struct {
	prefix string
	ttl    time.Duration
	flags  *xsync.MapOf[string, time.Time]
	now    func() time.Time
}

func NewMemoryStore(prefix string, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		prefix: prefix,
		ttl:    ttl,
		flags:  xsync.NewMapOf[string, time.Time](),
		now:    time.Now,
	}
}

func (s *MemoryStore) IsAuthenticated(_ context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	key := flagKey(s.prefix, sessionID)
	expires, ok := s.flags.Load(key)
	if !ok {
		return false, nil
	}
	if s.ttl > 0 && s.now().After(expires) {
		s.flags.Delete(key)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) SetAuthenticated(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	s.flags.Store(flagKey(s.prefix, sessionID), s.now().Add(s.ttl))
	return nil
}

// Sweep drops expired flags. Returns how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()
	removed := 0
	s.flags.Range(func(key string, expires time.Time) bool {
		if now.After(expires) {
			s.flags.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// RedisStore shares flags between panel replicas.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) IsAuthenticated(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	val, err := s.client.Get(ctx, flagKey(s.prefix, sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read session flag: %w", err)
	}
	return val == "true", nil
}

func (s *RedisStore) SetAuthenticated(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if err := s.client.Set(ctx, flagKey(s.prefix, sessionID), "true", s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session flag: %w", err)
	}
	return nil
}
