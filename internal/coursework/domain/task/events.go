package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated   = "coursework.task.created"
	RoutingKeyStarted   = "coursework.task.started"
	RoutingKeyUpdated   = "coursework.task.updated"
	RoutingKeyCompleted = "coursework.task.completed"
	RoutingKeyDeleted   = "coursework.task.deleted"
)

// TaskCreated is emitted when a new task is created.
type TaskCreated struct {
	domain.BaseEvent
	Title      string    `json:"title"`
	Subject    string    `json:"subject"`
	Deadline   time.Time `json:"deadline"`
	Difficulty string    `json:"difficulty"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(taskID uuid.UUID, title, subject string, deadline time.Time, difficulty string) *TaskCreated {
	return &TaskCreated{
		BaseEvent:  domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCreated),
		Title:      title,
		Subject:    subject,
		Deadline:   deadline,
		Difficulty: difficulty,
	}
}

// TaskStarted is emitted when a task moves to in_progress.
type TaskStarted struct {
	domain.BaseEvent
}

// NewTaskStarted creates a TaskStarted event.
func NewTaskStarted(taskID uuid.UUID) *TaskStarted {
	return &TaskStarted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyStarted),
	}
}

// TaskUpdated is emitted when task fields change.
type TaskUpdated struct {
	domain.BaseEvent
	Fields []string `json:"fields"` // Names of fields that were updated
}

// NewTaskUpdated creates a TaskUpdated event.
func NewTaskUpdated(taskID uuid.UUID, fields []string) *TaskUpdated {
	return &TaskUpdated{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyUpdated),
		Fields:    fields,
	}
}

// TaskCompleted is emitted when a task is completed.
type TaskCompleted struct {
	domain.BaseEvent
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(taskID uuid.UUID) *TaskCompleted {
	return &TaskCompleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCompleted),
	}
}

// TaskDeleted is emitted when a task is removed.
type TaskDeleted struct {
	domain.BaseEvent
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(taskID uuid.UUID) *TaskDeleted {
	return &TaskDeleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyDeleted),
	}
}
