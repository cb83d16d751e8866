package domain

import "time"

// User is a registered principal. The username is the unique handle callers
// authenticate with; users are never deleted, only soft-disabled.
type User struct {
	ID           string // ULID
	Username     string
	Email        string
	FullName     string
	PasswordHash string // argon2id PHC string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
