package task

import (
	"errors"
	"strings"
	"time"

	"github.com/edusense/edusense/internal/coursework/domain/value_objects"
	"github.com/edusense/edusense/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle          = errors.New("task title cannot be empty")
	ErrEmptySubject        = errors.New("task subject cannot be empty")
	ErrMissingDeadline     = errors.New("task deadline is required")
	ErrTaskAlreadyComplete = errors.New("task is already completed")
	ErrNotFound            = errors.New("task not found")
)

// Task is an academic assignment a student tracks against a deadline.
type Task struct {
	domain.BaseAggregateRoot
	userID        uuid.UUID
	title         string
	subject       string
	description   string
	deadline      time.Time
	difficulty    value_objects.Difficulty
	status        value_objects.Status
	priorityScore *float64
}

// NewTask creates a pending task. The deadline is required but may lie in
// the past; overdue work still needs tracking.
func NewTask(userID uuid.UUID, title, subject string, deadline time.Time, difficulty value_objects.Difficulty) (*Task, error) {
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

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		userID:            userID,
		title:             title,
		subject:           subject,
		deadline:          deadline.UTC(),
		difficulty:        difficulty,
		status:            value_objects.StatusPending,
	}

	t.AddDomainEvent(NewTaskCreated(t.ID(), t.title, t.subject, t.deadline, t.difficulty.String()))

	return t, nil
}

// Getters

func (t *Task) UserID() uuid.UUID                    { return t.userID }
func (t *Task) Title() string                        { return t.title }
func (t *Task) Subject() string                      { return t.subject }
func (t *Task) Description() string                  { return t.description }
func (t *Task) Deadline() time.Time                  { return t.deadline }
func (t *Task) Difficulty() value_objects.Difficulty { return t.difficulty }
func (t *Task) Status() value_objects.Status         { return t.status }
func (t *Task) PriorityScore() *float64              { return t.priorityScore }
func (t *Task) IsCompleted() bool                    { return t.status == value_objects.StatusCompleted }

// IsOverdue reports whether the deadline has passed at the given time.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.deadline.Before(now)
}

// SetTitle updates the task title.
func (t *Task) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.Touch()
	return nil
}

// SetSubject updates the course subject.
func (t *Task) SetSubject(subject string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return ErrEmptySubject
	}
	t.subject = subject
	t.Touch()
	return nil
}

// SetDescription updates the task description.
func (t *Task) SetDescription(description string) {
	t.description = strings.TrimSpace(description)
	t.Touch()
}

// SetDeadline updates the deadline. A zero deadline is never accepted.
func (t *Task) SetDeadline(deadline time.Time) error {
	if deadline.IsZero() {
		return ErrMissingDeadline
	}
	t.deadline = deadline.UTC()
	t.Touch()
	return nil
}

// SetDifficulty updates the difficulty level.
func (t *Task) SetDifficulty(difficulty value_objects.Difficulty) {
	t.difficulty = difficulty
	t.Touch()
}

// Start marks the task as in progress.
func (t *Task) Start() error {
	if t.IsCompleted() {
		return ErrTaskAlreadyComplete
	}
	if t.status == value_objects.StatusInProgress {
		return nil // Idempotent
	}
	t.status = value_objects.StatusInProgress
	t.Touch()
	t.AddDomainEvent(NewTaskStarted(t.ID()))
	return nil
}

// Complete marks the task as completed.
func (t *Task) Complete() error {
	if t.IsCompleted() {
		return ErrTaskAlreadyComplete
	}
	t.status = value_objects.StatusCompleted
	t.Touch()
	t.AddDomainEvent(NewTaskCompleted(t.ID()))
	return nil
}

// Snapshot is the persisted form of a task.
type Snapshot struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         string
	Subject       string
	Description   string
	Deadline      time.Time
	Difficulty    value_objects.Difficulty
	Status        value_objects.Status
	PriorityScore *float64
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Rehydrate rebuilds a task from a stored snapshot without emitting events.
func Rehydrate(s Snapshot) *Task {
	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt),
			s.Version,
		),
		userID:        s.UserID,
		title:         s.Title,
		subject:       s.Subject,
		description:   s.Description,
		deadline:      s.Deadline,
		difficulty:    s.Difficulty,
		status:        s.Status,
		priorityScore: s.PriorityScore,
	}
}
