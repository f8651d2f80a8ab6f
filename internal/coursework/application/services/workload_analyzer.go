package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/edusense/edusense/internal/coursework/domain/task"
	"github.com/edusense/edusense/internal/coursework/domain/value_objects"
)

// Risk levels, from most to least severe.
const (
	RiskLevelCritical = "critical"
	RiskLevelHigh     = "high"
	RiskLevelModerate = "moderate"
	RiskLevelLow      = "low"
)

// Warning types emitted by the analyzer.
const (
	WarningTaskDensity       = "task_density"
	WarningDifficultyCluster = "difficulty_cluster"
	WarningWeeklyOverload    = "weekly_overload"
	WarningTightDeadlines    = "tight_deadlines"
)

// WorkloadConfig tunes how the four risk factors combine.
// Weights sum to 1.0 so the risk score stays on the 0-10 scale.
type WorkloadConfig struct {
	DensityWeight float64
	ClusterWeight float64
	WeeklyWeight  float64
	SpacingWeight float64
}

// DefaultWorkloadConfig returns the production weighting.
func DefaultWorkloadConfig() WorkloadConfig {
	return WorkloadConfig{
		DensityWeight: 0.30,
		ClusterWeight: 0.30,
		WeeklyWeight:  0.25,
		SpacingWeight: 0.15,
	}
}

// CountFactor explains a factor driven by how many tasks fall in a window,
// naming the tasks that triggered it.
type CountFactor struct {
	Score         float64  `json:"score"`
	Weight        float64  `json:"weight"`
	WeightedScore float64  `json:"weighted_score"`
	Count         int      `json:"count"`
	Tasks         []string `json:"tasks"`
	Reason        string   `json:"reason"`
}

// LoadFactor explains the total-volume factor.
type LoadFactor struct {
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weighted_score"`
	Count         int     `json:"count"`
	Reason        string  `json:"reason"`
}

// SpacingFactor explains the gap between consecutive deadlines. Gap fields
// are nil when fewer than two deadlines fall in the window.
type SpacingFactor struct {
	Score         float64  `json:"score"`
	Weight        float64  `json:"weight"`
	WeightedScore float64  `json:"weighted_score"`
	MinGapHours   *float64 `json:"min_gap_hours"`
	AvgGapHours   *float64 `json:"avg_gap_hours,omitempty"`
	Reason        string   `json:"reason"`
}

// WorkloadBreakdown itemizes every factor behind the risk score.
type WorkloadBreakdown struct {
	TaskDensity       CountFactor   `json:"task_density"`
	DifficultyCluster CountFactor   `json:"difficulty_cluster"`
	WeeklyLoad        LoadFactor    `json:"weekly_load"`
	DeadlineSpacing   SpacingFactor `json:"deadline_spacing"`
}

// Warning flags one detected overload condition.
type Warning struct {
	Type     string   `json:"type"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Tasks    []string `json:"tasks,omitempty"`
}

// WorkloadReport is the full overload risk assessment for one student.
type WorkloadReport struct {
	RiskScore   float64           `json:"risk_score"`
	RiskLevel   string            `json:"risk_level"`
	ActiveTasks int               `json:"active_tasks"`
	Warnings    []Warning         `json:"warnings"`
	Suggestion  string            `json:"suggestion"`
	Breakdown   WorkloadBreakdown `json:"breakdown"`
}

// WorkloadAnalyzer detects upcoming overload from a student's task list.
type WorkloadAnalyzer struct {
	config WorkloadConfig
}

// NewWorkloadAnalyzer creates an analyzer with the given configuration.
func NewWorkloadAnalyzer(cfg WorkloadConfig) *WorkloadAnalyzer {
	return &WorkloadAnalyzer{config: cfg}
}

// Analyze computes the overload risk report at the given instant. The input
// may contain completed and long-overdue tasks; the analyzer filters them.
func (a *WorkloadAnalyzer) Analyze(tasks []*task.Task, now time.Time) WorkloadReport {
	active := activeTasks(tasks, now)

	density := a.densityFactor(active, now)
	cluster := a.clusterFactor(active, now)
	weekly := a.weeklyFactor(active, now)
	spacing := a.spacingFactor(active, now)

	raw := density.Score*a.config.DensityWeight +
		cluster.Score*a.config.ClusterWeight +
		weekly.Score*a.config.WeeklyWeight +
		spacing.Score*a.config.SpacingWeight

	riskScore := round1(clampScore(raw))

	return WorkloadReport{
		RiskScore:   riskScore,
		RiskLevel:   RiskLevel(riskScore),
		ActiveTasks: len(active),
		Warnings:    a.warnings(density, cluster, weekly, spacing),
		Suggestion:  a.suggestion(riskScore),
		Breakdown: WorkloadBreakdown{
			TaskDensity:       density,
			DifficultyCluster: cluster,
			WeeklyLoad:        weekly,
			DeadlineSpacing:   spacing,
		},
	}
}

// activeTasks filters to non-completed tasks due after now minus one day,
// so just-overdue work still counts toward the load.
func activeTasks(tasks []*task.Task, now time.Time) []*task.Task {
	cutoff := now.Add(-24 * time.Hour)

	active := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status() == value_objects.StatusCompleted {
			continue
		}
		if t.Deadline().Before(cutoff) {
			continue
		}
		active = append(active, t)
	}
	return active
}

// densityFactor counts tasks due within the next three days.
func (a *WorkloadAnalyzer) densityFactor(tasks []*task.Task, now time.Time) CountFactor {
	titles := titlesInWindow(tasks, now, 3*24*time.Hour, nil)
	count := len(titles)

	var score float64
	switch {
	case count >= 5:
		score = 10.0
	case count >= 4:
		score = 8.0
	case count >= 3:
		score = 6.0
	case count >= 2:
		score = 3.0
	}

	return CountFactor{
		Score:         score,
		Weight:        a.config.DensityWeight,
		WeightedScore: round2(score * a.config.DensityWeight),
		Count:         count,
		Tasks:         titles,
		Reason:        fmt.Sprintf("%d task%s due within the next 3 days", count, pluralSuffix(count)),
	}
}

// clusterFactor counts hard-difficulty tasks due within the next week.
func (a *WorkloadAnalyzer) clusterFactor(tasks []*task.Task, now time.Time) CountFactor {
	hardOnly := func(t *task.Task) bool { return t.Difficulty() == value_objects.DifficultyHard }
	titles := titlesInWindow(tasks, now, 7*24*time.Hour, hardOnly)
	count := len(titles)

	var score float64
	switch {
	case count >= 4:
		score = 10.0
	case count >= 3:
		score = 8.0
	case count >= 2:
		score = 5.0
	case count >= 1:
		score = 2.0
	}

	return CountFactor{
		Score:         score,
		Weight:        a.config.ClusterWeight,
		WeightedScore: round2(score * a.config.ClusterWeight),
		Count:         count,
		Tasks:         titles,
		Reason:        fmt.Sprintf("%d hard-difficulty task%s in the next 7 days", count, pluralSuffix(count)),
	}
}

// weeklyFactor counts all tasks due within the next week.
func (a *WorkloadAnalyzer) weeklyFactor(tasks []*task.Task, now time.Time) LoadFactor {
	count := len(titlesInWindow(tasks, now, 7*24*time.Hour, nil))

	var score float64
	switch {
	case count >= 8:
		score = 10.0
	case count >= 6:
		score = 7.0
	case count >= 4:
		score = 4.0
	case count >= 2:
		score = 2.0
	}

	return LoadFactor{
		Score:         score,
		Weight:        a.config.WeeklyWeight,
		WeightedScore: round2(score * a.config.WeeklyWeight),
		Count:         count,
		Reason:        fmt.Sprintf("%d total task%s due this week", count, pluralSuffix(count)),
	}
}

// spacingFactor measures the minimum gap between consecutive deadlines in
// the next week. Tight gaps leave no recovery time between submissions.
func (a *WorkloadAnalyzer) spacingFactor(tasks []*task.Task, now time.Time) SpacingFactor {
	windowEnd := now.Add(7 * 24 * time.Hour)

	var deadlines []time.Time
	for _, t := range tasks {
		d := t.Deadline()
		if !d.Before(now) && !d.After(windowEnd) {
			deadlines = append(deadlines, d)
		}
	}

	if len(deadlines) < 2 {
		return SpacingFactor{
			Weight: a.config.SpacingWeight,
			Reason: "Deadlines are well-spaced",
		}
	}

	sort.Slice(deadlines, func(i, j int) bool { return deadlines[i].Before(deadlines[j]) })

	minGap := deadlines[1].Sub(deadlines[0]).Hours()
	var totalGap float64
	for i := 1; i < len(deadlines); i++ {
		gap := deadlines[i].Sub(deadlines[i-1]).Hours()
		totalGap += gap
		if gap < minGap {
			minGap = gap
		}
	}
	avgGap := totalGap / float64(len(deadlines)-1)

	var score float64
	switch {
	case minGap < 6:
		score = 10.0
	case minGap < 12:
		score = 8.0
	case minGap < 24:
		score = 5.0
	case minGap < 48:
		score = 3.0
	}

	minRounded := round1(minGap)
	avgRounded := round1(avgGap)

	return SpacingFactor{
		Score:         score,
		Weight:        a.config.SpacingWeight,
		WeightedScore: round2(score * a.config.SpacingWeight),
		MinGapHours:   &minRounded,
		AvgGapHours:   &avgRounded,
		Reason:        fmt.Sprintf("Minimum %.1fh gap between deadlines", minRounded),
	}
}

func (a *WorkloadAnalyzer) warnings(density, cluster CountFactor, weekly LoadFactor, spacing SpacingFactor) []Warning {
	warnings := make([]Warning, 0, 4)

	if density.Score >= 6.0 {
		warnings = append(warnings, Warning{
			Type:     WarningTaskDensity,
			Severity: severityAt(density.Score, 8.0),
			Message:  fmt.Sprintf("%d tasks due in the next 3 days; consider rescheduling or prioritizing.", density.Count),
			Tasks:    density.Tasks,
		})
	}
	if cluster.Score >= 5.0 {
		warnings = append(warnings, Warning{
			Type:     WarningDifficultyCluster,
			Severity: severityAt(cluster.Score, 8.0),
			Message:  fmt.Sprintf("%d hard tasks this week; break them into smaller subtasks.", cluster.Count),
			Tasks:    cluster.Tasks,
		})
	}
	if weekly.Score >= 4.0 {
		warnings = append(warnings, Warning{
			Type:     WarningWeeklyOverload,
			Severity: severityAt(weekly.Score, 7.0),
			Message:  fmt.Sprintf("%d tasks due this week; plan dedicated focus blocks.", weekly.Count),
		})
	}
	if spacing.Score >= 5.0 {
		minGap := 0.0
		if spacing.MinGapHours != nil {
			minGap = *spacing.MinGapHours
		}
		warnings = append(warnings, Warning{
			Type:     WarningTightDeadlines,
			Severity: severityAt(spacing.Score, 8.0),
			Message:  fmt.Sprintf("Only %.1fh between some deadlines; very little buffer time.", minGap),
		})
	}

	return warnings
}

func (a *WorkloadAnalyzer) suggestion(score float64) string {
	switch {
	case score >= 8.0:
		return "Critical overload detected! You have too many demanding tasks in a short period. " +
			"Immediate actions: (1) Identify which tasks can be started today, " +
			"(2) Contact instructors if extensions are possible, " +
			"(3) Focus on high-priority tasks first and defer low-priority ones."
	case score >= 6.0:
		return "High workload detected. You're at risk of falling behind. " +
			"Suggestion: Block 2-3 hour focused study sessions for your hardest tasks. " +
			"Consider starting tasks earlier than planned to build buffer time."
	case score >= 4.0:
		return "Moderate workload this week. It's manageable but requires discipline. " +
			"Tip: Create a daily schedule and tackle the most challenging task during your peak energy hours."
	default:
		return "Your workload looks comfortable! Great job keeping things balanced. " +
			"Use this time to get ahead on upcoming tasks or review completed work."
	}
}

// RiskLevel converts a numeric risk score to its level label.
func RiskLevel(score float64) string {
	switch {
	case score >= 8.0:
		return RiskLevelCritical
	case score >= 6.0:
		return RiskLevelHigh
	case score >= 4.0:
		return RiskLevelModerate
	default:
		return RiskLevelLow
	}
}

// titlesInWindow returns titles of tasks whose deadline falls in
// [now, now+window], optionally filtered by a predicate. The returned slice
// is never nil so it serializes as an empty list.
func titlesInWindow(tasks []*task.Task, now time.Time, window time.Duration, match func(*task.Task) bool) []string {
	windowEnd := now.Add(window)

	titles := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if match != nil && !match(t) {
			continue
		}
		d := t.Deadline()
		if !d.Before(now) && !d.After(windowEnd) {
			titles = append(titles, t.Title())
		}
	}
	return titles
}

func severityAt(score, highThreshold float64) string {
	if score >= highThreshold {
		return "high"
	}
	return "medium"
}

func pluralSuffix(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
