package services

import (
	"context"
	"time"

	"github.com/edusense/edusense/internal/studyplan/domain"
)

// DraftRequest carries everything a drafter needs to plan sessions.
type DraftRequest struct {
	Title        string
	Subject      string
	MaterialText string
	Concepts     []domain.Concept
	WindowStart  time.Time
	WindowEnd    time.Time
}

// Drafter produces a schedule draft from course material. Implementations
// return an error rather than a partial draft; callers fall back to the
// rule-based planner.
type Drafter interface {
	DraftSchedule(ctx context.Context, req DraftRequest) (*domain.Draft, error)
}
