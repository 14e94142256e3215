package auth

import (
	"testing"

	"warden/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newFastHasher() *bcryptHasher {
	cfg := &config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}}

	return NewBcryptHasher(cfg).(*bcryptHasher)
}

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := newFastHasher()

	hash, err := hasher.Hash("Tr!ckyHorse7")
	require.NoError(t, err)
	assert.NotEqual(t, "Tr!ckyHorse7", hash)

	assert.True(t, hasher.Check("Tr!ckyHorse7", hash))
	assert.False(t, hasher.Check("tr!ckyhorse7", hash))
	assert.False(t, hasher.Check("", hash))
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	hasher := newFastHasher()

	first, err := hasher.Hash("Tr!ckyHorse7")
	require.NoError(t, err)
	second, err := hasher.Hash("Tr!ckyHorse7")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNewBcryptHasher_CostOutOfRangeFallsBack(t *testing.T) {
	cfg := &config.Config{Auth: &config.AuthConfig{BcryptCost: 99}}
	hasher := NewBcryptHasher(cfg).(*bcryptHasher)

	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}
