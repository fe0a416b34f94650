package types

import (
	"errors"
	"time"
)

// Role identifies the author of a transcript message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single normalized turn in a conversation.
// Messages are immutable once produced by a format adapter.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Label returns the display label used when rendering the message into
// segment text ("User" or "Assistant")
func (m *Message) Label() string {
	if m.Role == RoleUser {
		return "User"
	}
	return "Assistant"
}

// Validate checks that the message is well-formed
func (m *Message) Validate() error {
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return ErrInvalidRole
	}
	if m.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// Conversation is the normalized form of one source log file.
// A file that yields zero qualifying messages produces no Conversation.
type Conversation struct {
	SessionID    string
	Project      string
	Messages     []Message
	SourcePath   string
	LastModified time.Time
}

// Validate checks that the conversation carries the minimum identity
// required for indexing
func (c *Conversation) Validate() error {
	if c.SessionID == "" {
		return errors.New("conversation session ID cannot be empty")
	}
	if len(c.Messages) == 0 {
		return errors.New("conversation must contain at least one message")
	}
	return nil
}
