package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (memory, sqlite)
// implement this. The memory driver is the default: the service is volatile
// by design and owns no durability guarantees, but everything above this
// interface is driver-agnostic so a real backing store can be swapped in
// without touching the services.
type Store interface {
	Users() Users
	Messages() Messages

	// ApplyMigrations brings the schema up to date. No-op for drivers
	// without a schema.
	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists if the username is taken; under concurrent
	// registration of the same username exactly one call succeeds.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByUsername returns a user by its unique handle.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// SetUserDisabled toggles the soft-disable flag and bumps updated_at.
	SetUserDisabled(ctx context.Context, username string, disabled bool) error

	// IsEmpty reports whether there are no users (used for seeding).
	IsEmpty(ctx context.Context) (bool, error)
}

type Messages interface {
	// AppendMessage inserts a message at the tail of its user's history.
	AppendMessage(ctx context.Context, m domain.Message) error

	// ListMessages returns a user's history in insertion order, most recent
	// last. A positive limit returns only the tail `limit` messages,
	// preserving order; limit <= 0 returns everything.
	ListMessages(ctx context.Context, username string, limit int) ([]domain.Message, error)

	// ClearMessages removes a user's entire history and reports how many
	// messages were removed.
	ClearMessages(ctx context.Context, username string) (int64, error)
}
