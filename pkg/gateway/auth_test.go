package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signChallenge(challenge, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(challenge))
	return hex.EncodeToString(h.Sum(nil))
}

func TestAuthHandlerChallenge(t *testing.T) {
	auth := NewAuthHandler("test-secret")

	t.Run("should generate 32-byte challenge as hex", func(t *testing.T) {
		challenge, err := auth.GenerateChallenge()
		require.NoError(t, err)
		assert.Len(t, challenge, 64)
	})

	t.Run("should generate unique challenges", func(t *testing.T) {
		first, err := auth.GenerateChallenge()
		require.NoError(t, err)
		second, err := auth.GenerateChallenge()
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("should verify a correctly signed challenge", func(t *testing.T) {
		challenge, err := auth.GenerateChallenge()
		require.NoError(t, err)
		assert.True(t, auth.VerifySignature(challenge, signChallenge(challenge, "test-secret")))
	})

	t.Run("should reject garbage signatures", func(t *testing.T) {
		challenge, err := auth.GenerateChallenge()
		require.NoError(t, err)
		assert.False(t, auth.VerifySignature(challenge, "not-a-signature"))
	})

	t.Run("should reject signatures made with the wrong secret", func(t *testing.T) {
		challenge, err := auth.GenerateChallenge()
		require.NoError(t, err)
		assert.False(t, auth.VerifySignature(challenge, signChallenge(challenge, "wrong-secret")))
	})
}

func TestAuthHandlerResponse(t *testing.T) {
	auth := NewAuthHandler("test-secret")

	t.Run("should authenticate the client on a valid signature", func(t *testing.T) {
		client := &Client{ID: "c1", Challenge: "challenge-1"}

		result := auth.HandleAuthResponse(client, signChallenge("challenge-1", "test-secret"))

		assert.True(t, result.Success)
		assert.Equal(t, "auth.success", result.Event)
		assert.True(t, client.Authenticated)
		assert.Equal(t, StateAuthenticated, client.State)
		assert.Equal(t, 0, client.AuthAttempts)
		assert.Empty(t, client.Challenge, "challenge is single-use")
	})

	t.Run("should count failed attempts", func(t *testing.T) {
		client := &Client{ID: "c2", Challenge: "challenge-2"}

		result := auth.HandleAuthResponse(client, "bad")

		assert.False(t, result.Success)
		assert.Equal(t, "auth.failure", result.Event)
		assert.Equal(t, "Invalid signature", result.Message)
		assert.False(t, client.Authenticated)
		assert.Equal(t, 1, client.AuthAttempts)
	})

	t.Run("should report lockout on the last allowed attempt", func(t *testing.T) {
		client := &Client{ID: "c3", Challenge: "challenge-3", AuthAttempts: maxAuthAttempts - 1}

		result := auth.HandleAuthResponse(client, "bad")

		assert.False(t, result.Success)
		assert.Equal(t, "Too many failed attempts", result.Message)
		assert.Equal(t, maxAuthAttempts, client.AuthAttempts)
	})

	t.Run("should fail when the client has no pending challenge", func(t *testing.T) {
		client := &Client{ID: "c4"}

		result := auth.HandleAuthResponse(client, "any")

		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "No challenge found")
	})
}
