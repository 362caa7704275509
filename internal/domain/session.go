// Package domain contains core domain types for the Eva conversation service.
package domain

import (
	"time"
)

// Message roles as replayed to the chat-completion model.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session holds one end-user conversation: its message history and the facts
// inferred from it. Insertion order of Messages is meaningful: the history is
// replayed verbatim to the model. Messages is append-only except for an
// explicit reset.
type Session struct {
	ID        string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	Facts     *Facts    `json:"user_info"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty session in the initial stage.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Messages:  []Message{},
		Facts:     NewFacts(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a turn to the history.
func (s *Session) Append(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
	s.UpdatedAt = time.Now().UTC()
}

// Exchanges returns the number of completed user/assistant turn pairs.
func (s *Session) Exchanges() int {
	return len(s.Messages) / 2
}
