// Package memory is the default store driver. All state lives in process
// memory and is lost on restart, which is the intended durability model for
// this service.
package memory

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/store"
)

type Store struct {
	users    usersRepo
	messages messagesRepo
}

func NewStore() *Store {
	return &Store{
		users: usersRepo{
			byUsername: make(map[string]domain.User),
		},
		messages: messagesRepo{
			segments: make(map[string]*segment),
		},
	}
}

func (s *Store) Users() store.Users       { return &s.users }
func (s *Store) Messages() store.Messages { return &s.messages }

func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

// segment is one user's history. Segments are independently lockable so
// unrelated users' traffic never serializes on a shared lock.
type segment struct {
	mu   sync.Mutex
	msgs []domain.Message
}
