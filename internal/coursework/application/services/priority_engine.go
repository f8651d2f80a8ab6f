// Package services contains the scoring engine: deterministic, rule-based
// analysis of a student's tasks. Both engines are pure functions of their
// inputs and an explicit clock, which keeps every score reproducible.
package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/edusense/edusense/internal/coursework/domain/value_objects"
)

// Priority labels, from most to least urgent.
const (
	PriorityLabelCritical = "critical"
	PriorityLabelHigh     = "high"
	PriorityLabelMedium   = "medium"
	PriorityLabelLow      = "low"
)

// PriorityConfig tunes how the four signals combine into a score.
// Weights sum to 1.0 so the final score stays on the 0-10 scale.
type PriorityConfig struct {
	DeadlineWeight   float64
	DifficultyWeight float64
	StatusWeight     float64
	OverdueWeight    float64
}

// DefaultPriorityConfig returns the production weighting.
func DefaultPriorityConfig() PriorityConfig {
	return PriorityConfig{
		DeadlineWeight:   0.40,
		DifficultyWeight: 0.25,
		StatusWeight:     0.20,
		OverdueWeight:    0.15,
	}
}

// PrioritySignals contains the task attributes that influence its score.
type PrioritySignals struct {
	Deadline   time.Time
	Difficulty value_objects.Difficulty
	Status     value_objects.Status
}

// Factor explains one component of a priority score.
type Factor struct {
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weighted_score"`
	Reason        string  `json:"reason"`
}

// PriorityBreakdown itemizes every factor that entered the final score.
type PriorityBreakdown struct {
	DeadlineProximity Factor `json:"deadline_proximity"`
	Difficulty        Factor `json:"difficulty"`
	Status            Factor `json:"status"`
	OverduePenalty    Factor `json:"overdue_penalty"`
}

// PriorityReport is the full, explainable result of scoring one task.
type PriorityReport struct {
	FinalScore    float64           `json:"final_score"`
	PriorityLabel string            `json:"priority_label"`
	DaysRemaining float64           `json:"days_remaining"`
	Breakdown     PriorityBreakdown `json:"breakdown"`
	Suggestion    string            `json:"suggestion"`
}

// PriorityEngine computes task priority scores from weighted signals.
type PriorityEngine struct {
	config PriorityConfig
}

// NewPriorityEngine creates an engine with the given configuration.
func NewPriorityEngine(cfg PriorityConfig) *PriorityEngine {
	return &PriorityEngine{config: cfg}
}

// Score computes the priority report for one task at the given instant.
func (e *PriorityEngine) Score(signals PrioritySignals, now time.Time) PriorityReport {
	deadlineScore := e.deadlineScore(signals.Deadline, now)
	difficultyScore := e.difficultyScore(signals.Difficulty)
	statusScore := e.statusScore(signals.Status)
	overdueScore := e.overduePenalty(signals.Deadline, signals.Status, now)

	raw := deadlineScore*e.config.DeadlineWeight +
		difficultyScore*e.config.DifficultyWeight +
		statusScore*e.config.StatusWeight +
		overdueScore*e.config.OverdueWeight

	finalScore := round1(clampScore(raw))
	daysRemaining := round1(signals.Deadline.Sub(now).Hours() / 24)

	deadlineReason := fmt.Sprintf("%.1f days remaining", daysRemaining)
	if daysRemaining < 0 {
		deadlineReason = "Overdue!"
	}
	overdueReason := "Not overdue or completed"
	if overdueScore > 0 {
		overdueReason = "Overdue and not completed"
	}

	return PriorityReport{
		FinalScore:    finalScore,
		PriorityLabel: PriorityLabel(finalScore),
		DaysRemaining: daysRemaining,
		Breakdown: PriorityBreakdown{
			DeadlineProximity: e.factor(deadlineScore, e.config.DeadlineWeight, deadlineReason),
			Difficulty: e.factor(difficultyScore, e.config.DifficultyWeight,
				fmt.Sprintf("Task difficulty is %s", signals.Difficulty)),
			Status: e.factor(statusScore, e.config.StatusWeight,
				fmt.Sprintf("Task is %s", strings.ReplaceAll(signals.Status.String(), "_", " "))),
			OverduePenalty: e.factor(overdueScore, e.config.OverdueWeight, overdueReason),
		},
		Suggestion: e.suggestion(finalScore, daysRemaining, signals.Difficulty, signals.Status),
	}
}

func (e *PriorityEngine) factor(score, weight float64, reason string) Factor {
	return Factor{
		Score:         score,
		Weight:        weight,
		WeightedScore: round2(score * weight),
		Reason:        reason,
	}
}

// deadlineScore maps deadline proximity onto urgency bands. Bands are
// monotonic: a closer deadline never scores lower than a farther one.
func (e *PriorityEngine) deadlineScore(deadline, now time.Time) float64 {
	days := deadline.Sub(now).Hours() / 24

	switch {
	case days < 0:
		return 10.0 // Overdue
	case days < 0.5:
		return 9.5 // Due today
	case days < 1:
		return 9.0
	case days < 2:
		return 8.0
	case days < 3:
		return 7.0
	case days < 5:
		return 6.0
	case days < 7:
		return 5.0
	case days < 14:
		return 3.5
	case days < 21:
		return 2.0
	default:
		return 1.0
	}
}

// difficultyScore favours harder tasks, which need more planning lead time.
func (e *PriorityEngine) difficultyScore(difficulty value_objects.Difficulty) float64 {
	switch difficulty {
	case value_objects.DifficultyHard:
		return 9.0
	case value_objects.DifficultyMedium:
		return 5.5
	case value_objects.DifficultyEasy:
		return 2.5
	default:
		return 5.0 // Unreachable for parsed difficulties
	}
}

// statusScore favours untouched work: pending tasks score highest.
func (e *PriorityEngine) statusScore(status value_objects.Status) float64 {
	switch status {
	case value_objects.StatusPending:
		return 8.0
	case value_objects.StatusInProgress:
		return 4.0
	case value_objects.StatusCompleted:
		return 0.0
	default:
		return 5.0 // Unreachable for parsed statuses
	}
}

// overduePenalty adds the extra kick for work that is already past due.
// Completed tasks never incur it.
func (e *PriorityEngine) overduePenalty(deadline time.Time, status value_objects.Status, now time.Time) float64 {
	if status == value_objects.StatusCompleted {
		return 0.0
	}
	if !deadline.Before(now) {
		return 0.0
	}
	if status == value_objects.StatusPending {
		return 10.0
	}
	return 8.0 // in_progress
}

func (e *PriorityEngine) suggestion(score, daysRemaining float64, difficulty value_objects.Difficulty, status value_objects.Status) string {
	switch {
	case score >= 8.0:
		if daysRemaining < 0 {
			return "This task is overdue! Focus on completing it immediately or contact your instructor about an extension."
		}
		return "Critical priority! Start working on this task right away. Consider blocking dedicated time today."
	case score >= 6.0:
		if difficulty == value_objects.DifficultyHard {
			return "This is a high-priority, challenging task. Break it into smaller subtasks and start with the most complex part."
		}
		return "High priority. Schedule focused study time within the next 1-2 days."
	case score >= 4.0:
		if status == value_objects.StatusPending {
			return "Medium priority but not yet started. Plan to begin this task soon to avoid last-minute stress."
		}
		return "On track! Continue working on this at a steady pace."
	default:
		return "Low priority. You have plenty of time, but consider starting early to spread out your workload."
	}
}

// PriorityLabel converts a numeric score to its urgency label.
func PriorityLabel(score float64) string {
	switch {
	case score >= 8.0:
		return PriorityLabelCritical
	case score >= 6.0:
		return PriorityLabelHigh
	case score >= 4.0:
		return PriorityLabelMedium
	default:
		return PriorityLabelLow
	}
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 10 {
		return 10
	}
	return value
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
