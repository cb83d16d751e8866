package domain

import "time"

// MessageRole distinguishes the two halves of an exchange.
type MessageRole string

const (
	RoleUser   MessageRole = "user"
	RoleSystem MessageRole = "system"
)

// Message is one entry in a user's append-only chat history. Ordering is
// insertion order; CreatedAt is informational.
type Message struct {
	ID        string // UUID
	Username  string
	Role      MessageRole
	Content   string
	CreatedAt time.Time
}
