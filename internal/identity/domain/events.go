package domain

import (
	"github.com/google/uuid"

	sharedDomain "github.com/edusense/edusense/internal/shared/domain"
)

const (
	AggregateType = "User"

	RoutingKeyUserRegistered = "identity.user.registered"
)

// UserRegistered is emitted when a new account is created.
type UserRegistered struct {
	sharedDomain.BaseEvent
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// NewUserRegistered creates a UserRegistered event.
func NewUserRegistered(userID uuid.UUID, email, fullName string) *UserRegistered {
	return &UserRegistered{
		BaseEvent: sharedDomain.NewBaseEvent(userID, AggregateType, RoutingKeyUserRegistered),
		Email:     email,
		FullName:  fullName,
	}
}
