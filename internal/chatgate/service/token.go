package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
	"github.com/aussiebroadwan/chatgate/pkg/jwtx"
	"github.com/aussiebroadwan/chatgate/pkg/slogx"
)

// TokenService implements the password grant: verified credentials in,
// signed bearer token out.
type TokenService struct {
	Users     *UserService
	Codec     *jwtx.Codec
	AccessTTL time.Duration
}

func (s *TokenService) ttl() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

// Password verifies the credentials and issues an access token with the
// configured TTL. The token subject is the username.
func (s *TokenService) Password(ctx context.Context, username, password string) (domain.Token, error) {
	u, err := s.Users.VerifyCredentials(ctx, username, password)
	if err != nil {
		return domain.Token{}, err
	}

	ttl := s.ttl()
	raw, err := s.Codec.Issue(u.Username, ttl)
	if err != nil {
		return domain.Token{}, err
	}

	slogx.FromContext(ctx).Info("access token issued", "username", u.Username, "ttl", ttl)
	return domain.Token{
		AccessToken: raw,
		TokenType:   "bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}
