// Package queries contains the read-side handlers for coursework tasks,
// including the priority and workload report endpoints backed by the
// scoring engine.
package queries

import (
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/coursework/application/services"
	"github.com/edusense/edusense/internal/coursework/domain/task"
)

// TaskDTO is the serialized form of a task.
type TaskDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Subject       string    `json:"subject"`
	Description   string    `json:"description"`
	Deadline      time.Time `json:"deadline"`
	Difficulty    string    `json:"difficulty"`
	Status        string    `json:"status"`
	PriorityScore *float64  `json:"priority_score"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PriorityReportDTO is a priority report annotated with the task it scores.
type PriorityReportDTO struct {
	TaskID uuid.UUID `json:"task_id"`
	Title  string    `json:"title"`
	services.PriorityReport
}

func toTaskDTO(t *task.Task) TaskDTO {
	return TaskDTO{
		ID:            t.ID(),
		Title:         t.Title(),
		Subject:       t.Subject(),
		Description:   t.Description(),
		Deadline:      t.Deadline(),
		Difficulty:    t.Difficulty().String(),
		Status:        t.Status().String(),
		PriorityScore: t.PriorityScore(),
		CreatedAt:     t.CreatedAt(),
		UpdatedAt:     t.UpdatedAt(),
	}
}

func toTaskDTOs(tasks []*task.Task) []TaskDTO {
	dtos := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, toTaskDTO(t))
	}
	return dtos
}
