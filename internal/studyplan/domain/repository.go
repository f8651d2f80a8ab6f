package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence port for study schedules. Lookups that
// match nothing return ErrScheduleNotFound.
type Repository interface {
	Save(ctx context.Context, schedule *StudySchedule) error
	FindByID(ctx context.Context, id uuid.UUID) (*StudySchedule, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*StudySchedule, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
