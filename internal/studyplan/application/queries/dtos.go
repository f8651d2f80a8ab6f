// Package queries contains the read-side handlers for study schedules.
package queries

import (
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/studyplan/domain"
)

// StudyScheduleDTO is the serialized form of a study schedule. Sessions
// keep their domain shape; the field names there are part of the API
// contract already.
type StudyScheduleDTO struct {
	ID              uuid.UUID             `json:"id"`
	TaskID          *uuid.UUID            `json:"task_id"`
	Title           string                `json:"title"`
	Subject         string                `json:"subject"`
	Deadline        time.Time             `json:"deadline"`
	TotalTopics     int                   `json:"total_topics"`
	TotalDays       int                   `json:"total_days"`
	TotalHours      float64               `json:"total_hours"`
	ExtractedTopics []string              `json:"extracted_topics"`
	Sessions        []domain.StudySession `json:"sessions"`
	AISummary       string                `json:"ai_summary"`
	AITips          []string              `json:"ai_tips"`
	Source          string                `json:"source"`
	Status          string                `json:"status"`
	CreatedAt       time.Time             `json:"created_at"`
}

func toScheduleDTO(s *domain.StudySchedule) StudyScheduleDTO {
	return StudyScheduleDTO{
		ID:              s.ID(),
		TaskID:          s.TaskID(),
		Title:           s.Title(),
		Subject:         s.Subject(),
		Deadline:        s.Deadline(),
		TotalTopics:     s.TotalTopics(),
		TotalDays:       s.TotalDays(),
		TotalHours:      s.TotalHours(),
		ExtractedTopics: s.Topics(),
		Sessions:        s.Sessions(),
		AISummary:       s.Summary(),
		AITips:          s.Tips(),
		Source:          s.Source().String(),
		Status:          s.Status().String(),
		CreatedAt:       s.CreatedAt(),
	}
}

func toScheduleDTOs(schedules []*domain.StudySchedule) []StudyScheduleDTO {
	dtos := make([]StudyScheduleDTO, 0, len(schedules))
	for _, s := range schedules {
		dtos = append(dtos, toScheduleDTO(s))
	}
	return dtos
}
