// Package commands contains the write-side handlers for coursework tasks.
// Every handler runs inside a unit of work and stages domain events in the
// outbox alongside the aggregate change.
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

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	UserID      uuid.UUID
	Title       string
	Subject     string
	Description string
	Deadline    time.Time
	Difficulty  string
}

// CreateTaskResult contains the result of creating a task.
type CreateTaskResult struct {
	TaskID uuid.UUID
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateTaskHandler {
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	difficulty, err := value_objects.ParseDifficulty(cmd.Difficulty)
	if err != nil {
		return nil, err
	}

	var result *CreateTaskResult

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := task.NewTask(cmd.UserID, cmd.Title, cmd.Subject, cmd.Deadline, difficulty)
		if err != nil {
			return err
		}

		if cmd.Description != "" {
			t.SetDescription(cmd.Description)
		}

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
		if err := h.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
			return err
		}

		result = &CreateTaskResult{TaskID: t.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
