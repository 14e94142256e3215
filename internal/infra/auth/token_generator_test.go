package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_NewToken_EntropyAndEncoding(t *testing.T) {
	svc := NewTokenService()

	token, err := svc.NewToken()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err, "token must be padding-free base64url")
	assert.Len(t, raw, tokenEntropyBytes)
}

func TestTokenService_NewToken_NeverRepeats(t *testing.T) {
	svc := NewTokenService()

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		token, err := svc.NewToken()
		require.NoError(t, err)

		_, dup := seen[token]
		require.False(t, dup, "token value reused")
		seen[token] = struct{}{}
	}
}

func TestTokenService_HashToken_StableAndOpaque(t *testing.T) {
	svc := NewTokenService()

	hash := svc.HashToken("some-token")
	assert.Equal(t, svc.HashToken("some-token"), hash)
	assert.NotEqual(t, svc.HashToken("some-token2"), hash)
	assert.Len(t, hash, 64, "hex-encoded SHA-256")
	assert.NotContains(t, hash, "some-token")
}
