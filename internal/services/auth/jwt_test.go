package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret-key")

	token, err := GenerateToken("u1", secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := GetUserIDFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("u1", []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, []byte("secret-b"))
	require.Error(t, err)
}

func TestToken_Expired(t *testing.T) {
	token, err := GenerateToken("u1", []byte("test-secret-key"), -time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, []byte("test-secret-key"))
	require.Error(t, err)
}

func TestToken_Garbage(t *testing.T) {
	_, err := GetUserIDFromToken("not.a.token", []byte("test-secret-key"))
	require.Error(t, err)
}
