package model

import (
	"time"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage represents one turn within the transcript.
type ChatMessage struct {
	ID        ID        `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage builds a message stamped at the given time.
func NewChatMessage(id ID, role ChatRole, content string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        id,
		Role:      role,
		Content:   content,
		Timestamp: at,
	}
}

// GetRecentMessages returns the last n messages of msgs (all when n <= 0).
func GetRecentMessages(msgs []ChatMessage, n int) []ChatMessage {
	if n <= 0 || len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
