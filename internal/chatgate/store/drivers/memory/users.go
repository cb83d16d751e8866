package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/store"
)

type usersRepo struct {
	mu         sync.RWMutex
	byUsername map[string]domain.User
}

func (r *usersRepo) CreateUser(_ context.Context, u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check-and-insert under one lock so concurrent registrations of the
	// same username cannot both win.
	if _, exists := r.byUsername[u.Username]; exists {
		return store.ErrAlreadyExists
	}
	r.byUsername[u.Username] = u
	return nil
}

func (r *usersRepo) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byUsername[username]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) SetUserDisabled(_ context.Context, username string, disabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	u.Disabled = disabled
	u.UpdatedAt = time.Now().UTC()
	r.byUsername[username] = u
	return nil
}

func (r *usersRepo) IsEmpty(_ context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUsername) == 0, nil
}
