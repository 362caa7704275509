// Package store provides session persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/antaresinnovate/eva/internal/domain"
)

// ErrNotFound is returned when no session exists for the given identifier.
var ErrNotFound = errors.New("session not found")

// SessionStore persists conversation sessions. The default in-memory
// implementation is enough for a single-process deployment; the sqlite and
// redis backends can be substituted without touching extraction logic.
type SessionStore interface {
	// Get retrieves a session by identifier. Returns ErrNotFound when unknown.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Put creates or replaces a session.
	Put(ctx context.Context, session *domain.Session) error

	// List returns all sessions, in no particular order.
	List(ctx context.Context) ([]*domain.Session, error)

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteIdle removes sessions whose last activity is older than ttl.
	DeleteIdle(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
