package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	dErrors "fastpass/pkg/domain-errors"
)

// Record is the server-side session state keyed by session ID.
type Record struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store tracks active sessions so tokens can be revoked before expiry.
type Store interface {
	Create(ctx context.Context, sessionID string, rec Record, ttl time.Duration) error
	CheckActive(ctx context.Context, sessionID string) error
	Revoke(ctx context.Context, sessionID string) error
}

// InMemoryStore keeps sessions in a map. Default backing for development and
// unit tests.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]entry
}

type entry struct {
	rec       Record
	expiresAt time.Time
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]entry)}
}

func (s *InMemoryStore) Create(_ context.Context, sessionID string, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = entry{rec: rec, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *InMemoryStore) CheckActive(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.sessions, sessionID)
		return dErrors.New(dErrors.CodeUnauthorized, "session is not active")
	}
	return nil
}

func (s *InMemoryStore) Revoke(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// RedisStore backs sessions with Redis; TTLs ride on key expiry.
type RedisStore struct {
	client *goredis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(sessionID string) string { return "session:" + sessionID }

func (s *RedisStore) Create(ctx context.Context, sessionID string, rec Record, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) CheckActive(ctx context.Context, sessionID string) error {
	err := s.client.Get(ctx, sessionKey(sessionID)).Err()
	if errors.Is(err, goredis.Nil) {
		return dErrors.New(dErrors.CodeUnauthorized, "session is not active")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check session")
	}
	return nil
}

func (s *RedisStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	return nil
}
