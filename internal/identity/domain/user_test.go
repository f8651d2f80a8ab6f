package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusense/edusense/internal/identity/domain"
)

const testHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func TestNewUser(t *testing.T) {
	email, _ := domain.NewEmail("student@example.com")
	name, _ := domain.NewName("Ada Lovelace")

	user, err := domain.NewUser(email, name, testHash)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID())
	assert.Equal(t, "student@example.com", user.Email().String())
	assert.Equal(t, "Ada Lovelace", user.FullName().String())
	assert.Equal(t, testHash, user.PasswordHash())
	assert.Equal(t, 0, user.Version())
}

func TestNewUser_RequiresHash(t *testing.T) {
	email, _ := domain.NewEmail("student@example.com")
	name, _ := domain.NewName("Ada Lovelace")

	_, err := domain.NewUser(email, name, "")

	assert.ErrorIs(t, err, domain.ErrMissingHash)
}

func TestNewUser_EmitsRegisteredEvent(t *testing.T) {
	email, _ := domain.NewEmail("student@example.com")
	name, _ := domain.NewName("Ada Lovelace")

	user, err := domain.NewUser(email, name, testHash)
	require.NoError(t, err)

	events := user.DomainEvents()
	require.Len(t, events, 1)

	registered, ok := events[0].(*domain.UserRegistered)
	require.True(t, ok)
	assert.Equal(t, user.ID(), registered.AggregateID())
	assert.Equal(t, domain.RoutingKeyUserRegistered, registered.RoutingKey())
	assert.Equal(t, "student@example.com", registered.Email)
	assert.Equal(t, "Ada Lovelace", registered.FullName)
}

func TestRehydrateUser(t *testing.T) {
	id := uuid.New()
	email, _ := domain.NewEmail("student@example.com")
	name, _ := domain.NewName("Ada Lovelace")
	createdAt := time.Now().Add(-48 * time.Hour)
	updatedAt := time.Now().Add(-1 * time.Hour)

	user := domain.RehydrateUser(domain.UserSnapshot{
		ID:           id,
		Email:        email,
		FullName:     name,
		PasswordHash: testHash,
		Version:      3,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	})

	assert.Equal(t, id, user.ID())
	assert.Equal(t, testHash, user.PasswordHash())
	assert.Equal(t, 3, user.Version())
	assert.Equal(t, createdAt, user.CreatedAt())
	assert.Empty(t, user.DomainEvents(), "rehydration must not replay events")
}
