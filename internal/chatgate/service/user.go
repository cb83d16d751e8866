package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/metrics"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/store"
	"github.com/aussiebroadwan/chatgate/pkg/cryptox"
	"github.com/aussiebroadwan/chatgate/pkg/idx"
	"github.com/aussiebroadwan/chatgate/pkg/slogx"
)

// UserService owns registration and credential verification.
type UserService struct {
	Store   store.Store
	Metrics *metrics.Collector
}

// Register creates a new user with an argon2id password digest. Exactly one
// of two concurrent registrations for the same username succeeds; the loser
// gets ErrConflict.
func (s *UserService) Register(ctx context.Context, username, password, email, fullName string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        strings.TrimSpace(email),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}

	s.Metrics.RecordRegistration()
	slogx.FromContext(ctx).Info("user registered", "username", u.Username)
	return u, nil
}

// VerifyCredentials checks a username/password pair and returns the user.
// Unknown usernames and wrong passwords both come back as ErrUnauthorized.
// Disabled accounts may still obtain tokens; the disable flag is enforced
// at the resolver so it takes effect on the very next request.
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("login failed: unknown username", "username", username)
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		log.Info("login failed: bad password", "username", username)
		return domain.User{}, ErrUnauthorized
	}

	return u, nil
}

// GetByUsername fetches a user record by handle.
func (s *UserService) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.Store.Users().GetUserByUsername(ctx, username)
}
