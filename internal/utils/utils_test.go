package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "ADMIN", 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	uid, role, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
	assert.Equal(t, "ADMIN", role)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	good, err := NewAccessToken("secret", 1, "MEMBER", 5)
	require.NoError(t, err)
	_, _, err = ParseAccessToken("other", good.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("secret", 1, "MEMBER", -1)
	require.NoError(t, err)
	_, _, err = ParseAccessToken("secret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "role": "ADMIN"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, _, err = ParseAccessToken("secret", none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = ParseAccessToken("secret", "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmailChangeToken(t *testing.T) {
	tok, err := NewEmailChangeToken("secret", 7, "new@club.test", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	uid, email, err := ParseEmailChangeToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
	assert.Equal(t, "new@club.test", email)

	_, _, err = ParseEmailChangeToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewEmailChangeToken("secret", 7, "new@club.test", -time.Minute)
	require.NoError(t, err)
	_, _, err = ParseEmailChangeToken("secret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmailChangeAndAccessTokensDoNotMix(t *testing.T) {
	change, err := NewEmailChangeToken("secret", 7, "new@club.test", time.Hour)
	require.NoError(t, err)
	_, _, err = ParseAccessToken("secret", change.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := NewAccessToken("secret", 7, "MEMBER", 5)
	require.NoError(t, err)
	_, _, err = ParseEmailChangeToken("secret", access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))

	_, err = HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
