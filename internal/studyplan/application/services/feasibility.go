package services

import (
	"math"
	"time"

	"github.com/edusense/edusense/internal/studyplan/domain"
)

// A student has roughly twelve usable hours a day, and breaks plus
// context switching eat about a fifth of them.
const (
	studyMinutesPerDay = 720
	studyEfficiency    = 0.8
)

// Feasibility reports whether the extracted concepts fit into the time
// left before the deadline.
type Feasibility struct {
	Feasible          bool    `json:"feasible"`
	TotalStudyMinutes int     `json:"total_study_minutes"`
	AvailableMinutes  int     `json:"available_minutes"`
	UtilizationPct    float64 `json:"utilization_percentage"`
	DaysAvailable     int     `json:"days_available"`
	ConceptCount      int     `json:"concepts_count"`
	Recommendation    string  `json:"recommendation"`
}

// CheckFeasibility compares the total estimated study time against the
// effective minutes available before the deadline.
func CheckFeasibility(concepts []domain.Concept, now, deadline time.Time) Feasibility {
	total := 0
	for _, concept := range concepts {
		total += concept.EstimatedMinutes
	}

	daysAvailable := int(math.Floor(deadline.Sub(now).Hours()/24)) + 1
	effective := float64(daysAvailable) * studyMinutesPerDay * studyEfficiency

	utilization := 100.0
	if effective > 0 {
		utilization = round1(float64(total) / effective * 100)
	}

	return Feasibility{
		Feasible:          float64(total) <= effective,
		TotalStudyMinutes: total,
		AvailableMinutes:  int(effective),
		UtilizationPct:    utilization,
		DaysAvailable:     daysAvailable,
		ConceptCount:      len(concepts),
		Recommendation:    feasibilityRecommendation(utilization),
	}
}

func feasibilityRecommendation(utilization float64) string {
	switch {
	case utilization > 100:
		return "Not feasible - Consider extending deadline or reducing scope"
	case utilization > 80:
		return "Very tight schedule - Little room for flexibility"
	case utilization > 60:
		return "Challenging but achievable - Stay focused"
	case utilization > 40:
		return "Comfortable schedule - Good balance"
	default:
		return "Plenty of time - Consider adding more depth"
	}
}
