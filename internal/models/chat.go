package models

import (
	"time"

	"github.com/google/uuid"
)

// Role tags who produced a message. It is a structured field so presentation
// never has to sniff content prefixes.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one role-tagged utterance. It is never mutated after creation.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func newMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply from the AI chat along with the updated history.
type ChatResponse struct {
	Reply    string    `json:"reply"`
	Messages []Message `json:"messages"`
}

type HistoryResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Messages  []Message `json:"messages"`
}
