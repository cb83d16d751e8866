package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/metrics"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/store"
	"github.com/aussiebroadwan/chatgate/pkg/jwtx"
	"github.com/aussiebroadwan/chatgate/pkg/slogx"
)

// AuthService resolves bearer tokens to live user records. It is the single
// gate every protected operation passes through.
type AuthService struct {
	Store   store.Store
	Codec   *jwtx.Codec
	Metrics *metrics.Collector
}

// Authenticate verifies the token and loads its subject. All failure modes
// (malformed or expired token, unknown subject, disabled account) return
// the same ErrUnauthorized; the distinction exists only in the logs so the
// wire never confirms whether a handle exists.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	claims, err := s.Codec.Verify(raw)
	if err != nil {
		log.Warn("token verification failed", "err", err)
		s.Metrics.RecordAuthFailure()
		return domain.User{}, ErrUnauthorized
	}

	u, err := s.Store.Users().GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("token subject unknown", "subject", claims.Subject)
			s.Metrics.RecordAuthFailure()
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, err
	}

	if u.Disabled {
		log.Warn("disabled account rejected", "username", u.Username)
		s.Metrics.RecordAuthFailure()
		return domain.User{}, ErrUnauthorized
	}

	return u, nil
}
