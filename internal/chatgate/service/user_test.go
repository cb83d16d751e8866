package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newDefaultFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, "alice", "secret1", "alice@example.com", "Alice Example")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "alice@example.com", u.Email)
	require.Equal(t, "Alice Example", u.FullName)
	require.False(t, u.Disabled)

	// The digest is stored, never the password.
	require.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))
	require.NotContains(t, u.PasswordHash, "secret1")
}

func TestRegisterTrimsUsername(t *testing.T) {
	f := newDefaultFixture(t)

	u, err := f.users.Register(context.Background(), "  alice  ", "secret1", "", "")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
}

func TestRegisterDuplicate(t *testing.T) {
	f := newDefaultFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "alice", "secret1", "", "")
	require.NoError(t, err)

	_, err = f.users.Register(ctx, "alice", "other-password", "", "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	f := newDefaultFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "", "secret1", "", "")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.users.Register(ctx, "alice", "", "", "")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.users.Register(ctx, "   ", "secret1", "", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestVerifyCredentials(t *testing.T) {
	f := newDefaultFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "alice", "secret1", "", "")
	require.NoError(t, err)

	u, err := f.users.VerifyCredentials(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)

	_, err = f.users.VerifyCredentials(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.users.VerifyCredentials(ctx, "nobody", "secret1")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyCredentialsDisabledAccountStillLogsIn(t *testing.T) {
	// The disable flag is enforced at token resolution, not at login, so
	// it cuts off a live token instead of only blocking the next one.
	f := newDefaultFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "alice", "secret1", "", "")
	require.NoError(t, err)
	require.NoError(t, f.store.Users().SetUserDisabled(ctx, "alice", true))

	u, err := f.users.VerifyCredentials(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.True(t, u.Disabled)
}

func TestPasswordGrant(t *testing.T) {
	f := newDefaultFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "alice", "secret1", "", "")
	require.NoError(t, err)

	token, err := f.tokens.Password(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token.AccessToken)
	require.Equal(t, "bearer", token.TokenType)
	require.Equal(t, int64(60), token.ExpiresIn)

	// The token round-trips through the verifier with the right subject.
	claims, err := f.codec.Verify(token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
}

func TestPasswordGrantBadCredentials(t *testing.T) {
	f := newDefaultFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "alice", "secret1", "", "")
	require.NoError(t, err)

	_, err = f.tokens.Password(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.tokens.Password(ctx, "nobody", "secret1")
	require.ErrorIs(t, err, ErrUnauthorized)
}
