package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one browser's conversation: an append-only message sequence plus
// the pending input buffer. A Session is owned by exactly one browser session
// and is not safe for concurrent mutation.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Messages  []Message `json:"messages"`
	Pending   string    `json:"pending"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id uuid.UUID) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) AppendUser(text string) Message {
	return s.append(RoleUser, text)
}

func (s *Session) AppendBot(text string) Message {
	return s.append(RoleBot, text)
}

func (s *Session) append(role Role, text string) Message {
	msg := newMessage(role, text)
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = msg.CreatedAt
	return msg
}

// Clear drops every message. Calling it on an empty session is a no-op.
func (s *Session) Clear() {
	s.Messages = []Message{}
	s.UpdatedAt = time.Now().UTC()
}

func (s *Session) SetPending(text string) {
	s.Pending = text
}

// Render returns the messages in insertion order. The returned slice is a
// copy; mutating it does not affect the session.
func (s *Session) Render() []Message {
	out := make([]Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// Unanswered reports whether the last message is a user message with no bot
// reply, which happens when the exchange failed at the transport level.
func (s *Session) Unanswered() bool {
	n := len(s.Messages)
	return n > 0 && s.Messages[n-1].Role == RoleUser
}

// Clone returns a deep copy suitable for handing to another owner.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = s.Render()
	return &c
}
