package commands

import (
	"context"

	"github.com/google/uuid"

	sharedApplication "github.com/edusense/edusense/internal/shared/application"
	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
	"github.com/edusense/edusense/internal/studyplan/domain"
)

// CompleteScheduleCommand contains the data needed to mark a schedule as
// worked through.
type CompleteScheduleCommand struct {
	ScheduleID uuid.UUID
	UserID     uuid.UUID
}

// CompleteScheduleHandler handles the CompleteScheduleCommand.
type CompleteScheduleHandler struct {
	scheduleRepo domain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewCompleteScheduleHandler creates a new CompleteScheduleHandler.
func NewCompleteScheduleHandler(scheduleRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CompleteScheduleHandler {
	return &CompleteScheduleHandler{
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the CompleteScheduleCommand.
func (h *CompleteScheduleHandler) Handle(ctx context.Context, cmd CompleteScheduleCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		schedule, err := h.scheduleRepo.FindByID(txCtx, cmd.ScheduleID)
		if err != nil {
			return err
		}

		if schedule.UserID() != cmd.UserID {
			return domain.ErrScheduleNotFound
		}

		if err := schedule.Complete(); err != nil {
			return err
		}

		if err := h.scheduleRepo.Save(txCtx, schedule); err != nil {
			return err
		}

		events := schedule.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(cmd.UserID))

		msgs := make([]*outbox.Message, 0, len(events))
		for _, event := range events {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
}
