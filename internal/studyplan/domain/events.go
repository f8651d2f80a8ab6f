package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/shared/domain"
)

const (
	AggregateType = "StudySchedule"

	RoutingKeyGenerated = "studyplan.schedule.generated"
	RoutingKeyCompleted = "studyplan.schedule.completed"
	RoutingKeyDeleted   = "studyplan.schedule.deleted"
)

// ScheduleGenerated is emitted when a new schedule is drafted.
type ScheduleGenerated struct {
	domain.BaseEvent
	Title        string    `json:"title"`
	Subject      string    `json:"subject"`
	Deadline     time.Time `json:"deadline"`
	Source       string    `json:"source"`
	SessionCount int       `json:"session_count"`
}

// NewScheduleGenerated creates a ScheduleGenerated event.
func NewScheduleGenerated(scheduleID uuid.UUID, title, subject string, deadline time.Time, source string, sessionCount int) *ScheduleGenerated {
	return &ScheduleGenerated{
		BaseEvent:    domain.NewBaseEvent(scheduleID, AggregateType, RoutingKeyGenerated),
		Title:        title,
		Subject:      subject,
		Deadline:     deadline,
		Source:       source,
		SessionCount: sessionCount,
	}
}

// ScheduleCompleted is emitted when a schedule is finished.
type ScheduleCompleted struct {
	domain.BaseEvent
}

// NewScheduleCompleted creates a ScheduleCompleted event.
func NewScheduleCompleted(scheduleID uuid.UUID) *ScheduleCompleted {
	return &ScheduleCompleted{
		BaseEvent: domain.NewBaseEvent(scheduleID, AggregateType, RoutingKeyCompleted),
	}
}

// ScheduleDeleted is emitted when a schedule is removed.
type ScheduleDeleted struct {
	domain.BaseEvent
}

// NewScheduleDeleted creates a ScheduleDeleted event.
func NewScheduleDeleted(scheduleID uuid.UUID) *ScheduleDeleted {
	return &ScheduleDeleted{
		BaseEvent: domain.NewBaseEvent(scheduleID, AggregateType, RoutingKeyDeleted),
	}
}
