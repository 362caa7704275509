package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/antaresinnovate/eva/internal/domain"
	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// RedisStore implements SessionStore on Redis. Each session is one JSON value
// under "session:<id>"; idle expiry is delegated to Redis key TTLs, refreshed
// on every Put.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis creates a Redis-backed session store. A zero ttl keeps sessions
// forever.
func NewRedis(addr string, db int, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

// Get retrieves a session by identifier.
func (r *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.rdb.Get(ctx, sessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	session := domain.NewSession(id)
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if session.Messages == nil {
		session.Messages = []domain.Message{}
	}
	if session.Facts == nil {
		session.Facts = domain.NewFacts()
	}
	return session, nil
}

// Put creates or replaces a session and refreshes its TTL.
func (r *RedisStore) Put(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionPrefix+session.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// List returns all sessions.
func (r *RedisStore) List(ctx context.Context) ([]*domain.Session, error) {
	var sessions []*domain.Session
	iter := r.rdb.Scan(ctx, 0, sessionPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()[len(sessionPrefix):]
		session, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// Expired between scan and get.
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes a session.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteIdle is a no-op for Redis: key TTLs already evict idle sessions.
func (r *RedisStore) DeleteIdle(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

// Ping verifies Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
