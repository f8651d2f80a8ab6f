package task

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for task persistence.
type Repository interface {
	Save(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	// FindActive returns the user's tasks that are not yet completed.
	FindActive(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// UpdatePriorityScore caches a computed score on the task row without
	// bumping the aggregate version.
	UpdatePriorityScore(ctx context.Context, id uuid.UUID, score float64) error
}
