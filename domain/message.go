package domain

import (
	"errors"
	"fmt"
)

// Role identifies who authored a message.
type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
)

func (r Role) Valid() bool {
	return r == UserRole || r == AssistantRole
}

// Message is one turn of a conversation. Position in the history is the only
// ordering signal.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ErrInvalidConversation is returned when a history cannot be answered.
var ErrInvalidConversation = errors.New("invalid conversation")

// ValidateConversation checks that history is non-empty, uses known roles and
// ends with a user turn.
func ValidateConversation(history []Message) error {
	if len(history) == 0 {
		return fmt.Errorf("%w: no messages", ErrInvalidConversation)
	}
	for i, msg := range history {
		if !msg.Role.Valid() {
			return fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidConversation, i, msg.Role)
		}
	}
	if last := history[len(history)-1]; last.Role != UserRole {
		return fmt.Errorf("%w: last message must be from the user", ErrInvalidConversation)
	}
	return nil
}
