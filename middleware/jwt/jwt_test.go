package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	tm := NewTokenManager("test-secret", 1, 2)

	token, err := tm.GenerateToken("op-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.OperatorID)
	assert.Equal(t, "alice", claims.Name)
}

func TestTokenManager_ParseRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 1, 2)

	_, err := tm.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ParseRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 1, 2)
	other := NewTokenManager("secret-b", 1, 2)

	token, err := tm.GenerateToken("op-1", "alice")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	tm := &TokenManager{
		secret:     []byte("test-secret"),
		expireDur:  -time.Hour, // already expired at issue time
		refreshDur: 2 * time.Hour,
	}

	token, err := tm.GenerateToken("op-1", "alice")
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RefreshWithinWindow(t *testing.T) {
	tm := &TokenManager{
		secret:     []byte("test-secret"),
		expireDur:  -time.Minute, // expired a minute ago
		refreshDur: time.Hour,    // still inside the refresh window
	}

	token, err := tm.GenerateToken("op-1", "alice")
	require.NoError(t, err)

	fresh := NewTokenManager("test-secret", 1, 1)
	refreshed, err := (&TokenManager{
		secret:     tm.secret,
		expireDur:  fresh.expireDur,
		refreshDur: time.Hour,
	}).RefreshToken(token)
	require.NoError(t, err)

	claims, err := fresh.ParseToken(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.OperatorID)
}

func TestTokenManager_RefreshTooEarly(t *testing.T) {
	tm := NewTokenManager("test-secret", 24, 1)

	token, err := tm.GenerateToken("op-1", "alice")
	require.NoError(t, err)

	// expires in 24h, refresh window is only 1h
	_, err = tm.RefreshToken(token)
	assert.Error(t, err)
}
