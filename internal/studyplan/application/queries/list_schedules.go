package queries

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/studyplan/domain"
)

// ListSchedulesQuery contains the parameters for listing a user's schedules.
type ListSchedulesQuery struct {
	UserID uuid.UUID
	Status string // Optional filter: "active", "completed". Empty means all.
}

// ListSchedulesHandler handles the ListSchedulesQuery.
type ListSchedulesHandler struct {
	scheduleRepo domain.Repository
}

// NewListSchedulesHandler creates a new ListSchedulesHandler.
func NewListSchedulesHandler(scheduleRepo domain.Repository) *ListSchedulesHandler {
	return &ListSchedulesHandler{scheduleRepo: scheduleRepo}
}

// Handle executes the ListSchedulesQuery. Results are ordered by creation
// time, the newest first.
func (h *ListSchedulesHandler) Handle(ctx context.Context, query ListSchedulesQuery) ([]StudyScheduleDTO, error) {
	var statusFilter *domain.Status
	if query.Status != "" {
		status, err := domain.ParseStatus(query.Status)
		if err != nil {
			return nil, err
		}
		statusFilter = &status
	}

	schedules, err := h.scheduleRepo.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	if statusFilter != nil {
		filtered := make([]*domain.StudySchedule, 0, len(schedules))
		for _, s := range schedules {
			if s.Status() == *statusFilter {
				filtered = append(filtered, s)
			}
		}
		schedules = filtered
	}

	sort.SliceStable(schedules, func(i, j int) bool {
		return schedules[i].CreatedAt().After(schedules[j].CreatedAt())
	})

	return toScheduleDTOs(schedules), nil
}
