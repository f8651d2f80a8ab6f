package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edusense/edusense/internal/identity/domain"
	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
	"github.com/edusense/edusense/internal/shared/infrastructure/security"
)

type ctxKey string

// mockUserRepo is a mock implementation of domain.UserRepository.
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetFailed(ctx context.Context, maxRetries, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, maxRetries, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newAuthService(t *testing.T) (*AuthService, *mockUserRepo, *mockOutboxRepo, *mockUnitOfWork) {
	t.Helper()

	users := new(mockUserRepo)
	outboxRepo := new(mockOutboxRepo)
	uow := new(mockUnitOfWork)

	tokens, err := security.NewTokenManager("test-secret", "edusense-test", time.Hour)
	require.NoError(t, err)

	svc := NewAuthService(users, outboxRepo, uow, security.NewBcryptHasher(bcrypt.MinCost), tokens)
	return svc, users, outboxRepo, uow
}

func storedUser(t *testing.T, email, password string) *domain.User {
	t.Helper()

	parsedEmail, err := domain.NewEmail(email)
	require.NoError(t, err)
	name, err := domain.NewName("Ada Lovelace")
	require.NoError(t, err)

	hash, err := security.NewBcryptHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)

	return domain.RehydrateUser(domain.UserSnapshot{
		ID:           uuid.New(),
		Email:        parsedEmail,
		FullName:     name,
		PasswordHash: hash,
		CreatedAt:    time.Now().Add(-time.Hour),
		UpdatedAt:    time.Now().Add(-time.Hour),
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates account and returns session", func(t *testing.T) {
		svc, users, outboxRepo, uow := newAuthService(t)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		users.On("FindByEmail", txCtx, mock.AnythingOfType("domain.Email")).Return(nil, domain.ErrUserNotFound)
		users.On("Save", txCtx, mock.AnythingOfType("*domain.User")).Return(nil)

		var staged []*outbox.Message
		outboxRepo.On("SaveBatch", txCtx, mock.Anything).Run(func(args mock.Arguments) {
			staged = args.Get(1).([]*outbox.Message)
		}).Return(nil)

		result, err := svc.Register(ctx, RegisterCommand{
			FullName: "Ada Lovelace",
			Email:    "ADA@Example.com",
			Password: "sesame-open",
		})

		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", result.User.Email, "email is normalized")
		assert.Equal(t, "Ada Lovelace", result.User.FullName)
		assert.NotEmpty(t, result.Token)

		require.Len(t, staged, 1)
		assert.Equal(t, domain.RoutingKeyUserRegistered, staged[0].RoutingKey)
		assert.Equal(t, domain.AggregateType, staged[0].AggregateType)

		uow.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("issued token round-trips through verification", func(t *testing.T) {
		svc, users, outboxRepo, uow := newAuthService(t)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		users.On("FindByEmail", txCtx, mock.Anything).Return(nil, domain.ErrUserNotFound)
		users.On("Save", txCtx, mock.Anything).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.Anything).Return(nil)

		result, err := svc.Register(ctx, RegisterCommand{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Password: "sesame-open",
		})
		require.NoError(t, err)

		tokens, err := security.NewTokenManager("test-secret", "edusense-test", time.Hour)
		require.NoError(t, err)

		claims, err := tokens.Verify(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", claims.Email)

		subject, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, subject)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, users, _, uow := newAuthService(t)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		users.On("FindByEmail", txCtx, mock.Anything).Return(storedUser(t, "ada@example.com", "sesame-open"), nil)

		_, err := svc.Register(ctx, RegisterCommand{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Password: "sesame-open",
		})

		assert.ErrorIs(t, err, domain.ErrEmailTaken)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		uow.AssertExpectations(t)
	})

	t.Run("rejects invalid email before opening a transaction", func(t *testing.T) {
		svc, _, _, uow := newAuthService(t)

		_, err := svc.Register(context.Background(), RegisterCommand{
			FullName: "Ada Lovelace",
			Email:    "not-an-email",
			Password: "sesame-open",
		})

		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc, _, _, uow := newAuthService(t)

		_, err := svc.Register(context.Background(), RegisterCommand{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Password: "short",
		})

		assert.ErrorIs(t, err, ErrPasswordTooShort)
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("rejects short name", func(t *testing.T) {
		svc, _, _, _ := newAuthService(t)

		_, err := svc.Register(context.Background(), RegisterCommand{
			FullName: "A",
			Email:    "ada@example.com",
			Password: "sesame-open",
		})

		assert.ErrorIs(t, err, domain.ErrNameTooShort)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("returns session for valid credentials", func(t *testing.T) {
		svc, users, _, _ := newAuthService(t)
		ctx := context.Background()

		user := storedUser(t, "ada@example.com", "sesame-open")
		users.On("FindByEmail", ctx, mock.Anything).Return(user, nil)

		result, err := svc.Login(ctx, LoginCommand{Email: "Ada@Example.com", Password: "sesame-open"})

		require.NoError(t, err)
		assert.Equal(t, user.ID(), result.User.ID)
		assert.NotEmpty(t, result.Token)
		assert.True(t, result.ExpiresAt.After(time.Now()))
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		svc, users, _, _ := newAuthService(t)
		ctx := context.Background()

		users.On("FindByEmail", ctx, mock.Anything).Return(storedUser(t, "ada@example.com", "sesame-open"), nil)

		_, err := svc.Login(ctx, LoginCommand{Email: "ada@example.com", Password: "wrong-guess"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects unknown email with the same error as a wrong password", func(t *testing.T) {
		svc, users, _, _ := newAuthService(t)
		ctx := context.Background()

		users.On("FindByEmail", ctx, mock.Anything).Return(nil, domain.ErrUserNotFound)

		_, err := svc.Login(ctx, LoginCommand{Email: "ghost@example.com", Password: "sesame-open"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects malformed email without touching the repository", func(t *testing.T) {
		svc, users, _, _ := newAuthService(t)

		_, err := svc.Login(context.Background(), LoginCommand{Email: "not-an-email", Password: "sesame-open"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}

func TestAuthService_GetUser(t *testing.T) {
	t.Run("returns public view", func(t *testing.T) {
		svc, users, _, _ := newAuthService(t)
		ctx := context.Background()

		user := storedUser(t, "ada@example.com", "sesame-open")
		users.On("FindByID", ctx, user.ID()).Return(user, nil)

		dto, err := svc.GetUser(ctx, user.ID())

		require.NoError(t, err)
		assert.Equal(t, user.ID(), dto.ID)
		assert.Equal(t, "ada@example.com", dto.Email)
		assert.Equal(t, "Ada Lovelace", dto.FullName)
	})

	t.Run("propagates not found", func(t *testing.T) {
		svc, users, _, _ := newAuthService(t)
		ctx := context.Background()

		missing := uuid.New()
		users.On("FindByID", ctx, missing).Return(nil, domain.ErrUserNotFound)

		_, err := svc.GetUser(ctx, missing)

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
