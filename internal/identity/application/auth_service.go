// Package application contains the identity use cases: account
// registration, credential login, and session lookup.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/identity/domain"
	sharedApplication "github.com/edusense/edusense/internal/shared/application"
	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
	"github.com/edusense/edusense/internal/shared/infrastructure/security"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

var (
	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike, so login failures do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordTooShort is returned when a registration password is
	// below MinPasswordLength.
	ErrPasswordTooShort = errors.New("password is too short")
)

// RegisterCommand contains the data needed to create an account.
type RegisterCommand struct {
	FullName string
	Email    string
	Password string
}

// LoginCommand contains login credentials.
type LoginCommand struct {
	Email    string
	Password string
}

// UserDTO is the public view of an account. It never carries the
// password hash.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult carries a signed session token and the account it belongs to.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserDTO
}

// AuthService implements registration and login.
type AuthService struct {
	users      domain.UserRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	hasher     security.PasswordHasher
	tokens     *security.TokenManager
	now        func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users domain.UserRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	hasher security.PasswordHasher,
	tokens *security.TokenManager,
) *AuthService {
	return &AuthService{
		users:      users,
		outboxRepo: outboxRepo,
		uow:        uow,
		hasher:     hasher,
		tokens:     tokens,
		now:        time.Now,
	}
}

// Register creates an account and returns a session for it. Duplicate
// emails fail with domain.ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, cmd RegisterCommand) (*AuthResult, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	fullName, err := domain.NewName(cmd.FullName)
	if err != nil {
		return nil, err
	}
	if len(cmd.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// Hash before opening the transaction; bcrypt is deliberately slow.
	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *domain.User

	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		_, err := s.users.FindByEmail(txCtx, email)
		if err == nil {
			return domain.ErrEmailTaken
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}

		user, err = domain.NewUser(email, fullName, hash)
		if err != nil {
			return err
		}

		if err := s.users.Save(txCtx, user); err != nil {
			return err
		}

		// Stage domain events in the outbox
		events := user.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(user.ID()))

		msgs := make([]*outbox.Message, 0, len(events))
		for _, event := range events {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		return s.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return nil, err
	}

	return s.session(user)
}

// Login verifies credentials and returns a session.
func (s *AuthService) Login(ctx context.Context, cmd LoginCommand) (*AuthResult, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash(), cmd.Password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.session(user)
}

// GetUser returns the public view of an account.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := toUserDTO(user)
	return &dto, nil
}

func (s *AuthService) session(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID(), user.Email().String(), s.now())
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserDTO(user),
	}, nil
}

func toUserDTO(user *domain.User) UserDTO {
	return UserDTO{
		ID:        user.ID(),
		FullName:  user.FullName().String(),
		Email:     user.Email().String(),
		CreatedAt: user.CreatedAt(),
	}
}
