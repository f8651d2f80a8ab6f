package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/studyplan/domain"
)

// GetScheduleQuery contains the parameters for getting a single schedule.
type GetScheduleQuery struct {
	ScheduleID uuid.UUID
	UserID     uuid.UUID
}

// GetScheduleHandler handles the GetScheduleQuery.
type GetScheduleHandler struct {
	scheduleRepo domain.Repository
}

// NewGetScheduleHandler creates a new GetScheduleHandler.
func NewGetScheduleHandler(scheduleRepo domain.Repository) *GetScheduleHandler {
	return &GetScheduleHandler{scheduleRepo: scheduleRepo}
}

// Handle executes the GetScheduleQuery. Schedules owned by other users read
// as missing so schedule IDs cannot be probed.
func (h *GetScheduleHandler) Handle(ctx context.Context, query GetScheduleQuery) (*StudyScheduleDTO, error) {
	schedule, err := h.scheduleRepo.FindByID(ctx, query.ScheduleID)
	if err != nil {
		return nil, err
	}

	if schedule.UserID() != query.UserID {
		return nil, domain.ErrScheduleNotFound
	}

	dto := toScheduleDTO(schedule)
	return &dto, nil
}
