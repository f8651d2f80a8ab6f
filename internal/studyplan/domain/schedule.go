// Package domain contains the study planning model: schedules assembled
// from course material, the day-level sessions inside them, and the
// concepts the planner extracts along the way.
package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/shared/domain"
)

var (
	ErrEmptyTitle              = errors.New("schedule title cannot be empty")
	ErrEmptySubject            = errors.New("schedule subject cannot be empty")
	ErrMissingDeadline         = errors.New("schedule deadline is required")
	ErrNoSessions              = errors.New("schedule needs at least one session")
	ErrScheduleAlreadyComplete = errors.New("schedule is already completed")
	ErrScheduleNotFound        = errors.New("schedule not found")
	ErrInvalidScheduleStatus   = errors.New("invalid schedule status")
	ErrInvalidScheduleSource   = errors.New("invalid schedule source")
)

// Source records how a schedule was drafted.
type Source string

const (
	SourceAI    Source = "ai"
	SourceRules Source = "rules"
)

func (s Source) String() string { return string(s) }

// Status is the lifecycle state of a schedule.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func (s Status) String() string { return string(s) }

// ParseStatus converts a stored string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusCompleted:
		return Status(s), nil
	default:
		return "", ErrInvalidScheduleStatus
	}
}

// ParseSource converts a stored string into a Source.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceAI, SourceRules:
		return Source(s), nil
	default:
		return "", ErrInvalidScheduleSource
	}
}

// Draft is the generated content of a schedule before it becomes an
// aggregate: the plan itself plus where it came from.
type Draft struct {
	Topics   []string
	Sessions []StudySession
	Summary  string
	Tips     []string
	Source   Source
}

// StudySchedule is a day-by-day study plan a student follows toward a
// deadline, optionally linked to the task it prepares for.
type StudySchedule struct {
	domain.BaseAggregateRoot
	userID   uuid.UUID
	taskID   *uuid.UUID
	title    string
	subject  string
	deadline time.Time
	topics   []string
	sessions []StudySession
	summary  string
	tips     []string
	source   Source
	status   Status
}

// NewStudySchedule creates an active schedule from a draft. A schedule
// always names at least one topic; drafts without topics fall back to
// the subject.
func NewStudySchedule(userID uuid.UUID, taskID *uuid.UUID, title, subject string, deadline time.Time, draft Draft) (*StudySchedule, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrEmptySubject
	}
	if deadline.IsZero() {
		return nil, ErrMissingDeadline
	}
	if len(draft.Sessions) == 0 {
		return nil, ErrNoSessions
	}

	topics := draft.Topics
	if len(topics) == 0 {
		topics = []string{subject}
	}

	s := &StudySchedule{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		userID:            userID,
		taskID:            taskID,
		title:             title,
		subject:           subject,
		deadline:          deadline.UTC(),
		topics:            topics,
		sessions:          draft.Sessions,
		summary:           draft.Summary,
		tips:              draft.Tips,
		source:            draft.Source,
		status:            StatusActive,
	}

	s.AddDomainEvent(NewScheduleGenerated(s.ID(), s.title, s.subject, s.deadline, s.source.String(), len(s.sessions)))

	return s, nil
}

// Getters

func (s *StudySchedule) UserID() uuid.UUID        { return s.userID }
func (s *StudySchedule) TaskID() *uuid.UUID       { return s.taskID }
func (s *StudySchedule) Title() string            { return s.title }
func (s *StudySchedule) Subject() string          { return s.subject }
func (s *StudySchedule) Deadline() time.Time      { return s.deadline }
func (s *StudySchedule) Topics() []string         { return s.topics }
func (s *StudySchedule) Sessions() []StudySession { return s.sessions }
func (s *StudySchedule) Summary() string          { return s.summary }
func (s *StudySchedule) Tips() []string           { return s.tips }
func (s *StudySchedule) Source() Source           { return s.source }
func (s *StudySchedule) Status() Status           { return s.status }
func (s *StudySchedule) IsCompleted() bool        { return s.status == StatusCompleted }

// TotalTopics returns the number of topics the schedule covers.
func (s *StudySchedule) TotalTopics() int { return len(s.topics) }

// TotalDays returns the number of distinct calendar days with sessions.
func (s *StudySchedule) TotalDays() int {
	days := make(map[string]struct{}, len(s.sessions))
	for _, session := range s.sessions {
		days[session.Date] = struct{}{}
	}
	return len(days)
}

// TotalHours returns the summed session duration, rounded to one decimal.
func (s *StudySchedule) TotalHours() float64 {
	var hours float64
	for _, session := range s.sessions {
		hours += session.DurationHours
	}
	return math.Round(hours*10) / 10
}

// Complete marks the schedule as finished.
func (s *StudySchedule) Complete() error {
	if s.IsCompleted() {
		return ErrScheduleAlreadyComplete
	}
	s.status = StatusCompleted
	s.Touch()
	s.AddDomainEvent(NewScheduleCompleted(s.ID()))
	return nil
}

// ScheduleSnapshot is the persisted form of a study schedule.
type ScheduleSnapshot struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TaskID    *uuid.UUID
	Title     string
	Subject   string
	Deadline  time.Time
	Topics    []string
	Sessions  []StudySession
	Summary   string
	Tips      []string
	Source    Source
	Status    Status
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RehydrateSchedule rebuilds a schedule from a stored snapshot without
// emitting events.
func RehydrateSchedule(s ScheduleSnapshot) *StudySchedule {
	return &StudySchedule{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt),
			s.Version,
		),
		userID:   s.UserID,
		taskID:   s.TaskID,
		title:    s.Title,
		subject:  s.Subject,
		deadline: s.Deadline,
		topics:   s.Topics,
		sessions: s.Sessions,
		summary:  s.Summary,
		tips:     s.Tips,
		source:   s.Source,
		status:   s.Status,
	}
}
