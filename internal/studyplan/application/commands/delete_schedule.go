package commands

import (
	"context"

	"github.com/google/uuid"

	sharedApplication "github.com/edusense/edusense/internal/shared/application"
	sharedDomain "github.com/edusense/edusense/internal/shared/domain"
	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
	"github.com/edusense/edusense/internal/studyplan/domain"
)

// DeleteScheduleCommand contains the data needed to delete a schedule.
type DeleteScheduleCommand struct {
	ScheduleID uuid.UUID
	UserID     uuid.UUID
}

// DeleteScheduleHandler handles the DeleteScheduleCommand.
type DeleteScheduleHandler struct {
	scheduleRepo domain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewDeleteScheduleHandler creates a new DeleteScheduleHandler.
func NewDeleteScheduleHandler(scheduleRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *DeleteScheduleHandler {
	return &DeleteScheduleHandler{
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the DeleteScheduleCommand. Deletion is permanent; the row
// and the aggregate are gone once the transaction commits.
func (h *DeleteScheduleHandler) Handle(ctx context.Context, cmd DeleteScheduleCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		schedule, err := h.scheduleRepo.FindByID(txCtx, cmd.ScheduleID)
		if err != nil {
			return err
		}

		if schedule.UserID() != cmd.UserID {
			return domain.ErrScheduleNotFound
		}

		if err := h.scheduleRepo.Delete(txCtx, schedule.ID()); err != nil {
			return err
		}

		events := []sharedDomain.DomainEvent{domain.NewScheduleDeleted(schedule.ID())}
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
