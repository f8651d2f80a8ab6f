package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/edusense/edusense/internal/studyplan/domain"
)

// maxTopics bounds how many extracted topics a draft carries.
const maxTopics = 15

// fallbackSessionCount caps the generic plan used when no concepts were
// extracted from the material.
const fallbackSessionCount = 7

var fallbackFocusCycle = []domain.FocusLevel{
	domain.FocusHigh, domain.FocusMedium, domain.FocusHigh, domain.FocusMedium,
	domain.FocusLow, domain.FocusHigh, domain.FocusMedium,
}

// PlanWindow normalizes now and the deadline into a whole-day study
// window. The window always spans at least one day, even for deadlines
// that already passed.
func PlanWindow(now, deadline time.Time) (time.Time, time.Time) {
	start := truncateToDay(now.UTC())
	end := truncateToDay(deadline.UTC())
	if !end.After(start) {
		end = start.AddDate(0, 0, 1)
	}
	return start, end
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func windowDays(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// PlanSessions builds a deterministic day-level schedule from extracted
// concepts. Hard concepts are studied first, while the mind is fresh;
// each day holds at most a sustainable block of hours; the resulting
// sessions spread evenly across the window up to the deadline.
func PlanSessions(subject string, concepts []domain.Concept, now, deadline time.Time) ([]domain.StudySession, error) {
	start, end := PlanWindow(now, deadline)
	totalDays := windowDays(start, end)

	if len(concepts) == 0 {
		return genericSessions(subject, start, totalDays)
	}

	buckets := packIntoDays(orderForStudy(concepts), totalDays)

	sessions := make([]domain.StudySession, 0, len(buckets))
	for i, bucket := range buckets {
		date := start.AddDate(0, 0, i*totalDays/len(buckets))

		topics := make([]string, 0, len(bucket.concepts))
		for _, concept := range bucket.concepts {
			topics = append(topics, concept.Title)
		}

		focus := bucketFocus(bucket)
		session, err := domain.NewStudySession(i+1, date, topics, clampHours(bucket.minutes), focus, focusTip(focus))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// genericSessions covers the no-concepts case: evenly spread sessions
// over the subject itself, alternating focus levels.
func genericSessions(subject string, start time.Time, totalDays int) ([]domain.StudySession, error) {
	numSessions := totalDays
	if numSessions > fallbackSessionCount {
		numSessions = fallbackSessionCount
	}

	sessions := make([]domain.StudySession, 0, numSessions)
	for i := 0; i < numSessions; i++ {
		date := start.AddDate(0, 0, i*totalDays/numSessions)
		tip := fmt.Sprintf("Session %d: focus on understanding the core concepts before moving on.", i+1)

		session, err := domain.NewStudySession(i+1, date, []string{subject}, 2.0,
			fallbackFocusCycle[i%len(fallbackFocusCycle)], tip)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// orderForStudy sorts hard concepts first, shorter ones first within the
// same difficulty.
func orderForStudy(concepts []domain.Concept) []domain.Concept {
	rank := map[domain.Difficulty]int{
		domain.DifficultyHard:   0,
		domain.DifficultyMedium: 1,
		domain.DifficultyEasy:   2,
	}

	ordered := make([]domain.Concept, len(concepts))
	copy(ordered, concepts)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := rank[ordered[i].Difficulty], rank[ordered[j].Difficulty]
		if ri != rj {
			return ri < rj
		}
		return ordered[i].EstimatedMinutes < ordered[j].EstimatedMinutes
	})

	return ordered
}

type dayBucket struct {
	concepts []domain.Concept
	minutes  int
}

// packIntoDays groups consecutive concepts into day-sized buckets. The
// per-day cap grows when the material cannot fit the window at the
// sustainable rate, so the bucket count never exceeds the window.
func packIntoDays(concepts []domain.Concept, totalDays int) []dayBucket {
	capMinutes := int(domain.MaxSessionHours * 60)

	total := 0
	for _, concept := range concepts {
		total += concept.EstimatedMinutes
	}
	if totalDays > 0 && total > capMinutes*totalDays {
		capMinutes = (total + totalDays - 1) / totalDays
	}

	var buckets []dayBucket
	var current dayBucket
	for _, concept := range concepts {
		if len(current.concepts) > 0 && current.minutes+concept.EstimatedMinutes > capMinutes {
			buckets = append(buckets, current)
			current = dayBucket{}
		}
		current.concepts = append(current.concepts, concept)
		current.minutes += concept.EstimatedMinutes
	}
	if len(current.concepts) > 0 {
		buckets = append(buckets, current)
	}

	// Concepts straddling the cap can still overshoot the window; fold
	// the overflow into the final day.
	for len(buckets) > totalDays && len(buckets) > 1 {
		last := buckets[len(buckets)-1]
		buckets = buckets[:len(buckets)-1]
		tail := &buckets[len(buckets)-1]
		tail.concepts = append(tail.concepts, last.concepts...)
		tail.minutes += last.minutes
	}

	return buckets
}

func bucketFocus(bucket dayBucket) domain.FocusLevel {
	focus := domain.FocusLow
	for _, concept := range bucket.concepts {
		switch concept.Difficulty {
		case domain.DifficultyHard:
			return domain.FocusHigh
		case domain.DifficultyMedium:
			focus = domain.FocusMedium
		}
	}
	return focus
}

func focusTip(focus domain.FocusLevel) string {
	switch focus {
	case domain.FocusHigh:
		return "Tackle the hardest material first while your focus is fresh."
	case domain.FocusMedium:
		return "Work in 50 minute blocks with a 10 minute break between them."
	default:
		return "Close with a light review of everything covered so far."
	}
}

func clampHours(minutes int) float64 {
	hours := float64(minutes) / 60
	if hours < domain.MinSessionHours {
		hours = domain.MinSessionHours
	}
	if hours > domain.MaxSessionHours {
		hours = domain.MaxSessionHours
	}
	return round1(hours)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RuleBasedDraft assembles a complete schedule draft without AI:
// deterministic sessions plus a templated summary and study tips.
func RuleBasedDraft(title, subject string, concepts []domain.Concept, now, deadline time.Time) (domain.Draft, error) {
	sessions, err := PlanSessions(subject, concepts, now, deadline)
	if err != nil {
		return domain.Draft{}, err
	}

	topics := make([]string, 0, len(concepts))
	for _, concept := range concepts {
		topics = append(topics, concept.Title)
	}
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}

	start, end := PlanWindow(now, deadline)

	return domain.Draft{
		Topics:   topics,
		Sessions: sessions,
		Summary:  fmt.Sprintf("Study plan for %s covering %s over %d days.", title, subject, windowDays(start, end)),
		Tips: []string{
			"Review material before each session",
			"Take 10-minute breaks every hour",
			"Use active recall techniques",
			"Summarise key points after each session",
		},
		Source: domain.SourceRules,
	}, nil
}
