package domain

import "time"

type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
	JSON        bool
}

// SessionMessage is one turn recorded against a caller-supplied session id.
type SessionMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
