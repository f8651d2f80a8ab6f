package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	// MinCost keeps the test fast; production uses the default cost.
	hasher := NewBcryptHasher(bcrypt.MinCost)

	t.Run("verifies the original password", func(t *testing.T) {
		hash, err := hasher.Hash("correct horse battery staple")
		require.NoError(t, err)
		assert.NotEqual(t, "correct horse battery staple", hash)

		assert.NoError(t, hasher.Verify(hash, "correct horse battery staple"))
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		hash, err := hasher.Hash("correct horse battery staple")
		require.NoError(t, err)

		err = hasher.Verify(hash, "incorrect horse")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("produces distinct hashes for the same password", func(t *testing.T) {
		first, err := hasher.Hash("same password")
		require.NoError(t, err)
		second, err := hasher.Hash("same password")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("rejects passwords over 72 bytes", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("a", 73))
		assert.Error(t, err)
	})

	t.Run("rejects malformed stored hashes", func(t *testing.T) {
		err := hasher.Verify("not a bcrypt hash", "anything")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrPasswordMismatch)
	})
}

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	hasher := NewBcryptHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}
