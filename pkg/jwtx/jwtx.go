// Package jwtx issues and verifies the service's bearer tokens. Tokens are
// HS256 JWTs signed with a single process-wide secret: any mutation of the
// claims invalidates the signature, and rotating the secret invalidates
// every outstanding token at once.
//
// There is no server-side revocation list. A token is valid until its
// natural expiry, full stop; treat secret rotation as the only kill switch.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime the orchestrator uses unless
// configured otherwise. Short-to-medium lived; there is no refresh flow.
const DefaultAccessTokenTTL = 30 * time.Minute

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and missing
	// required claims.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	// ErrExpiredToken means the signature checked out but now >= exp.
	ErrExpiredToken = errors.New("jwtx: token expired")
)

// Claims are the self-contained identity claim carried by every token.
type Claims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a shared secret.
type Codec struct {
	secret []byte
	issuer string
}

func NewCodec(secret []byte, issuer string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: signing secret must not be empty")
	}
	return &Codec{secret: secret, issuer: issuer}, nil
}

// Issue mints a signed token for subject, valid for ttl from now.
func (c *Codec) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks the signature and expiry and returns the claims. Expiry is
// strict: there is no clock-skew leeway. Any failure other than expiry is
// reported as ErrInvalidToken so callers cannot distinguish why a forged
// token was rejected.
func (c *Codec) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in no state to mint
		// credentials at all.
		panic("jwtx: failed to generate jti: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
