package security

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenManager(t *testing.T) {
	t.Run("rejects an empty secret", func(t *testing.T) {
		_, err := NewTokenManager("", "edusense", time.Hour)
		assert.Error(t, err)
	})

	t.Run("defaults the ttl when not positive", func(t *testing.T) {
		manager, err := NewTokenManager("secret", "edusense", 0)
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, manager.ttl)
	})
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	manager, err := NewTokenManager("test-secret", "edusense", time.Hour)
	require.NoError(t, err)

	userID := uuid.New()
	now := time.Now()

	token, expiresAt, err := manager.Issue(userID, "ada@university.edu", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	claims, err := manager.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "ada@university.edu", claims.Email)
	assert.Equal(t, "edusense", claims.Issuer)

	parsedID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
}

func TestTokenManager_Verify(t *testing.T) {
	manager, err := NewTokenManager("test-secret", "edusense", time.Hour)
	require.NoError(t, err)

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := manager.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		other, err := NewTokenManager("other-secret", "edusense", time.Hour)
		require.NoError(t, err)

		token, _, err := other.Issue(uuid.New(), "eve@university.edu", time.Now())
		require.NoError(t, err)

		_, err = manager.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		short, err := NewTokenManager("test-secret", "edusense", time.Minute)
		require.NoError(t, err)

		// Issued far enough in the past to be expired now.
		token, _, err := short.Issue(uuid.New(), "ada@university.edu", time.Now().Add(-2*time.Hour))
		require.NoError(t, err)

		_, err = manager.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
