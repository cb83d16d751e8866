package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec([]byte("test-secret-at-least-32-bytes-long!"), "chatgate-test")
	require.NoError(t, err)
	return codec
}

func TestNewCodecRejectsEmptySecret(t *testing.T) {
	_, err := NewCodec(nil, "chatgate-test")
	require.Error(t, err)

	_, err = NewCodec([]byte{}, "chatgate-test")
	require.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	raw, err := codec.Issue("alice", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := codec.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, "chatgate-test", claims.Issuer)
	require.NotEmpty(t, claims.ID)
	require.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestVerifyExpiredToken(t *testing.T) {
	codec := newTestCodec(t)

	raw, err := codec.Issue("alice", -time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyTamperedToken(t *testing.T) {
	codec := newTestCodec(t)

	raw, err := codec.Issue("alice", time.Minute)
	require.NoError(t, err)

	// Flip a character in the payload segment.
	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = codec.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec([]byte("a-completely-different-signing-key"), "chatgate-test")
	require.NoError(t, err)

	raw, err := codec.Issue("alice", time.Minute)
	require.NoError(t, err)

	_, err = other.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	codec := newTestCodec(t)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c", "a.b"} {
		_, err := codec.Verify(raw)
		require.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	codec := newTestCodec(t)

	// alg=none must never pass, even with otherwise valid claims.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresSubject(t *testing.T) {
	codec := newTestCodec(t)

	raw, err := codec.Issue("", time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJTIUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewJTI()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate jti %q", id)
		seen[id] = true
	}
}
