package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("chat not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat. Messages are stored inline on the chat row
// and are never edited or removed individually.
type Message struct {
	ID              string    `json:"id"`
	Role            Role      `json:"role"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	ContextAttached *bool     `json:"context_attached,omitempty"`
}

func NewUserMessage(content string, contextAttached bool) Message {
	return Message{
		ID:              uuid.NewString(),
		Role:            RoleUser,
		Content:         content,
		CreatedAt:       time.Now().UTC(),
		ContextAttached: &contextAttached,
	}
}

func NewAssistantMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

type Chat struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Ref addresses a chat through its ownership chain.
type Ref struct {
	ChatID    string
	ProjectID string
	OwnerID   string
}

// Thread is a chat read together with the parent project fields the
// message pipeline needs, in one consistent read.
type Thread struct {
	Chat
	ProjectName    string
	ProjectContext json.RawMessage
}

func (t *Thread) HasContext() bool {
	trimmed := bytes.TrimSpace(t.ProjectContext)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
