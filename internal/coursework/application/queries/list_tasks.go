package queries

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/coursework/domain/task"
	"github.com/edusense/edusense/internal/coursework/domain/value_objects"
)

// ListTasksQuery contains the parameters for listing a user's tasks.
type ListTasksQuery struct {
	UserID uuid.UUID
	Status string // Optional filter: "pending", "in_progress", "completed". Empty means all.
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo task.Repository
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo}
}

// Handle executes the ListTasksQuery. Results are ordered by deadline, the
// most urgent first.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	var statusFilter *value_objects.Status
	if query.Status != "" {
		status, err := value_objects.ParseStatus(query.Status)
		if err != nil {
			return nil, err
		}
		statusFilter = &status
	}

	tasks, err := h.taskRepo.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	if statusFilter != nil {
		filtered := make([]*task.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Status() == *statusFilter {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Deadline().Before(tasks[j].Deadline())
	})

	return toTaskDTOs(tasks), nil
}
