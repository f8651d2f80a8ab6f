package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/coursework/domain/task"
	"github.com/edusense/edusense/internal/coursework/domain/value_objects"
	sharedApplication "github.com/edusense/edusense/internal/shared/application"
	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
)

// UpdateTaskCommand contains the data needed to update a task.
// Nil fields mean no change.
type UpdateTaskCommand struct {
	TaskID      uuid.UUID
	UserID      uuid.UUID
	Title       *string
	Subject     *string
	Description *string
	Deadline    *time.Time
	Difficulty  *string
}

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *UpdateTaskHandler {
	return &UpdateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the UpdateTaskCommand.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}

		// Foreign tasks present as missing
		if t.UserID() != cmd.UserID {
			return task.ErrNotFound
		}

		var updatedFields []string

		if cmd.Title != nil {
			if err := t.SetTitle(*cmd.Title); err != nil {
				return err
			}
			updatedFields = append(updatedFields, "title")
		}

		if cmd.Subject != nil {
			if err := t.SetSubject(*cmd.Subject); err != nil {
				return err
			}
			updatedFields = append(updatedFields, "subject")
		}

		if cmd.Description != nil {
			t.SetDescription(*cmd.Description)
			updatedFields = append(updatedFields, "description")
		}

		if cmd.Deadline != nil {
			if err := t.SetDeadline(*cmd.Deadline); err != nil {
				return err
			}
			updatedFields = append(updatedFields, "deadline")
		}

		if cmd.Difficulty != nil {
			difficulty, err := value_objects.ParseDifficulty(*cmd.Difficulty)
			if err != nil {
				return err
			}
			t.SetDifficulty(difficulty)
			updatedFields = append(updatedFields, "difficulty")
		}

		// Nothing changed, nothing to save
		if len(updatedFields) == 0 {
			return nil
		}

		t.AddDomainEvent(task.NewTaskUpdated(t.ID(), updatedFields))

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		// Stage domain events in the outbox
		events := t.DomainEvents()
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
