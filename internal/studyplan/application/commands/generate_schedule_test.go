package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
	"github.com/edusense/edusense/internal/studyplan/application/services"
	"github.com/edusense/edusense/internal/studyplan/domain"
)

type ctxKey string

// mockScheduleRepo is a mock implementation of domain.Repository.
type mockScheduleRepo struct {
	mock.Mock
}

func (m *mockScheduleRepo) Save(ctx context.Context, s *domain.StudySchedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.StudySchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudySchedule), args.Error(1)
}

func (m *mockScheduleRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.StudySchedule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StudySchedule), args.Error(1)
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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

// mockDrafter is a mock implementation of services.Drafter.
type mockDrafter struct {
	mock.Mock
}

func (m *mockDrafter) DraftSchedule(ctx context.Context, req services.DraftRequest) (*domain.Draft, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func mustSession(t *testing.T, day int, date time.Time, topics []string, hours float64, focus domain.FocusLevel) domain.StudySession {
	t.Helper()
	session, err := domain.NewStudySession(day, date, topics, hours, focus, "tip")
	require.NoError(t, err)
	return session
}

func TestGenerateScheduleHandler_Handle(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	deadline := time.Date(2026, 3, 9, 17, 0, 0, 0, time.UTC)

	t.Run("generates a rule-based plan when no drafter is configured", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewGenerateScheduleHandler(scheduleRepo, outboxRepo, uow, nil, nil)
		handler.now = func() time.Time { return now }

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)

		var saved *domain.StudySchedule
		scheduleRepo.On("Save", txCtx, mock.AnythingOfType("*domain.StudySchedule")).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*domain.StudySchedule)
		}).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		result, err := handler.Handle(ctx, GenerateScheduleCommand{
			UserID:   userID,
			Subject:  "Biology",
			Deadline: deadline,
		})

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.NotEqual(t, uuid.Nil, result.ScheduleID)
		assert.Equal(t, domain.SourceRules, result.Source)
		assert.True(t, result.Feasibility.Feasible)
		assert.Equal(t, 8, result.Feasibility.DaysAvailable)

		require.NotNil(t, saved)
		assert.Equal(t, "Biology Study Plan", saved.Title())
		assert.Equal(t, []string{"Biology"}, saved.Topics())
		assert.Len(t, saved.Sessions(), 7)

		uow.AssertExpectations(t)
		scheduleRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("prefers the ai draft when the drafter succeeds", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		drafter := new(mockDrafter)
		handler := NewGenerateScheduleHandler(scheduleRepo, outboxRepo, uow, drafter, nil)
		handler.now = func() time.Time { return now }

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		session := mustSession(t, 1, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), []string{"Photosynthesis"}, 1.5, domain.FocusHigh)
		draft := &domain.Draft{
			Topics:   []string{"Photosynthesis", "Cell Respiration"},
			Sessions: []domain.StudySession{session},
			Summary:  "AI summary",
			Tips:     []string{"AI tip"},
			Source:   domain.SourceAI,
		}

		var req services.DraftRequest
		drafter.On("DraftSchedule", ctx, mock.AnythingOfType("services.DraftRequest")).Run(func(args mock.Arguments) {
			req = args.Get(1).(services.DraftRequest)
		}).Return(draft, nil)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)

		var saved *domain.StudySchedule
		scheduleRepo.On("Save", txCtx, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*domain.StudySchedule)
		}).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.Anything).Return(nil)

		result, err := handler.Handle(ctx, GenerateScheduleCommand{
			UserID:   userID,
			Title:    "Midterm Prep",
			Subject:  "Biology",
			Deadline: deadline,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.SourceAI, result.Source)

		assert.Equal(t, "Midterm Prep", req.Title)
		assert.Equal(t, "Biology", req.Subject)
		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), req.WindowStart)
		assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), req.WindowEnd)

		require.NotNil(t, saved)
		assert.Equal(t, "AI summary", saved.Summary())
		assert.Equal(t, []string{"Photosynthesis", "Cell Respiration"}, saved.Topics())
		require.Len(t, saved.Sessions(), 1)
		assert.Equal(t, "Tuesday", saved.Sessions()[0].DayName)

		drafter.AssertExpectations(t)
	})

	t.Run("falls back to rules when the drafter fails", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		drafter := new(mockDrafter)
		handler := NewGenerateScheduleHandler(scheduleRepo, outboxRepo, uow, drafter, nil)
		handler.now = func() time.Time { return now }

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		drafter.On("DraftSchedule", ctx, mock.Anything).Return(nil, errors.New("model overloaded"))

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)

		var saved *domain.StudySchedule
		scheduleRepo.On("Save", txCtx, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*domain.StudySchedule)
		}).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.Anything).Return(nil)

		result, err := handler.Handle(ctx, GenerateScheduleCommand{
			UserID:   userID,
			Subject:  "Biology",
			Deadline: deadline,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.SourceRules, result.Source)
		require.NotNil(t, saved)
		assert.Len(t, saved.Sessions(), 7)

		drafter.AssertExpectations(t)
	})

	t.Run("stages generated event in outbox", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewGenerateScheduleHandler(scheduleRepo, outboxRepo, uow, nil, nil)
		handler.now = func() time.Time { return now }

		ctx := context.Background()
		txCtx := context.WithValue(ctx, ctxKey("tx"), "tx")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		scheduleRepo.On("Save", txCtx, mock.Anything).Return(nil)

		var staged []*outbox.Message
		outboxRepo.On("SaveBatch", txCtx, mock.Anything).Run(func(args mock.Arguments) {
			staged = args.Get(1).([]*outbox.Message)
		}).Return(nil)

		_, err := handler.Handle(ctx, GenerateScheduleCommand{
			UserID:   userID,
			Subject:  "Biology",
			Deadline: deadline,
		})

		require.NoError(t, err)
		require.Len(t, staged, 1)
		assert.Equal(t, domain.RoutingKeyGenerated, staged[0].RoutingKey)
		assert.Equal(t, domain.AggregateType, staged[0].AggregateType)
	})

	t.Run("fails with empty subject before opening a transaction", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewGenerateScheduleHandler(scheduleRepo, outboxRepo, uow, nil, nil)

		result, err := handler.Handle(context.Background(), GenerateScheduleCommand{
			UserID:   userID,
			Subject:  "   ",
			Deadline: deadline,
		})

		assert.ErrorIs(t, err, domain.ErrEmptySubject)
		assert.Nil(t, result)
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("fails with zero deadline before opening a transaction", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewGenerateScheduleHandler(scheduleRepo, outboxRepo, uow, nil, nil)

		result, err := handler.Handle(context.Background(), GenerateScheduleCommand{
			UserID:  userID,
			Subject: "Biology",
		})

		assert.ErrorIs(t, err, domain.ErrMissingDeadline)
		assert.Nil(t, result)
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("fails when unit of work begin fails", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewGenerateScheduleHandler(scheduleRepo, outboxRepo, uow, nil, nil)
		handler.now = func() time.Time { return now }

		ctx := context.Background()
		uow.On("Begin", ctx).Return(ctx, errors.New("database connection error"))

		result, err := handler.Handle(ctx, GenerateScheduleCommand{
			UserID:   userID,
			Subject:  "Biology",
			Deadline: deadline,
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		uow.AssertExpectations(t)
	})
}
