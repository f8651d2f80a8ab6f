package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/edusense/edusense/internal/shared/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrMissingHash  = errors.New("password hash is required")
)

// User is a student account. The aggregate never sees plaintext
// passwords; callers hash before construction.
type User struct {
	sharedDomain.BaseAggregateRoot
	email        Email
	fullName     Name
	passwordHash string
}

// NewUser creates a user account with a pre-hashed password.
func NewUser(email Email, fullName Name, passwordHash string) (*User, error) {
	if passwordHash == "" {
		return nil, ErrMissingHash
	}

	u := &User{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		email:             email,
		fullName:          fullName,
		passwordHash:      passwordHash,
	}

	u.AddDomainEvent(NewUserRegistered(u.ID(), email.String(), fullName.String()))

	return u, nil
}

// Email returns the account email.
func (u *User) Email() Email { return u.email }

// FullName returns the account holder's name.
func (u *User) FullName() Name { return u.fullName }

// PasswordHash returns the stored bcrypt hash.
func (u *User) PasswordHash() string { return u.passwordHash }

// UserSnapshot is the stored state of a user account.
type UserSnapshot struct {
	ID           uuid.UUID
	Email        Email
	FullName     Name
	PasswordHash string
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RehydrateUser rebuilds a user from a stored snapshot without emitting
// events.
func RehydrateUser(s UserSnapshot) *User {
	return &User{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt),
			s.Version,
		),
		email:        s.Email,
		fullName:     s.FullName,
		passwordHash: s.PasswordHash,
	}
}
