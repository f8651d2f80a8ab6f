package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/coursework/domain/task"
	sharedApplication "github.com/edusense/edusense/internal/shared/application"
	"github.com/edusense/edusense/internal/shared/domain"
	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
)

// DeleteTaskCommand contains the data needed to delete a task.
type DeleteTaskCommand struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *DeleteTaskHandler {
	return &DeleteTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the DeleteTaskCommand. Deletion is permanent; the row and
// the aggregate are gone once the transaction commits.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}

		if t.UserID() != cmd.UserID {
			return task.ErrNotFound
		}

		if err := h.taskRepo.Delete(txCtx, t.ID()); err != nil {
			return err
		}

		events := []domain.DomainEvent{task.NewTaskDeleted(t.ID())}
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
