package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/antaresinnovate/eva/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements SessionStore using SQLite. History and facts are
// serialized as JSON columns; the session identifier is the primary key.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed session store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		messages_json TEXT NOT NULL,
		facts_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get retrieves a session by identifier.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT session_id, messages_json, facts_json, created_at, updated_at
		FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	var (
		session      domain.Session
		messagesJSON string
		factsJSON    string
		createdAt    int64
		updatedAt    int64
	)
	if err := row.Scan(&session.ID, &messagesJSON, &factsJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	if err := hydrateSession(&session, messagesJSON, factsJSON, createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &session, nil
}

// Put creates or replaces a session.
func (s *SQLiteStore) Put(ctx context.Context, session *domain.Session) error {
	messagesJSON, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	factsJSON, err := json.Marshal(session.Facts)
	if err != nil {
		return fmt.Errorf("marshal facts: %w", err)
	}

	query := `
		INSERT INTO sessions (session_id, messages_json, facts_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			messages_json = excluded.messages_json,
			facts_json = excluded.facts_json,
			updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		session.ID, string(messagesJSON), string(factsJSON),
		session.CreatedAt.Unix(), session.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// List returns all sessions.
func (s *SQLiteStore) List(ctx context.Context) ([]*domain.Session, error) {
	query := `
		SELECT session_id, messages_json, facts_json, created_at, updated_at
		FROM sessions`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		var (
			session      domain.Session
			messagesJSON string
			factsJSON    string
			createdAt    int64
			updatedAt    int64
		)
		if err := rows.Scan(&session.ID, &messagesJSON, &factsJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if err := hydrateSession(&session, messagesJSON, factsJSON, createdAt, updatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes a session.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteIdle removes sessions idle past ttl.
func (s *SQLiteStore) DeleteIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func hydrateSession(session *domain.Session, messagesJSON, factsJSON string, createdAt, updatedAt int64) error {
	if err := json.Unmarshal([]byte(messagesJSON), &session.Messages); err != nil {
		return fmt.Errorf("unmarshal messages: %w", err)
	}
	session.Facts = domain.NewFacts()
	if err := json.Unmarshal([]byte(factsJSON), session.Facts); err != nil {
		return fmt.Errorf("unmarshal facts: %w", err)
	}
	if session.Messages == nil {
		session.Messages = []domain.Message{}
	}
	if session.Facts.Needs == nil {
		session.Facts.Needs = []string{}
	}
	if session.Facts.Stage == "" {
		session.Facts.Stage = domain.StageInitial
	}
	session.CreatedAt = time.Unix(createdAt, 0).UTC()
	session.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return nil
}
