package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusense/edusense/internal/studyplan/application/queries"
	studyplanDomain "github.com/edusense/edusense/internal/studyplan/domain"
)

const lectureNotes = `# Graph Traversal
Breadth-first search visits vertices level by level using a queue.

# Dynamic Programming
Memoization is an advanced optimization technique with complex proofs.

# Sorting Basics
A simple introduction to comparison sorts.`

func userIDForToken(t *testing.T, f *apiFixture, token string) uuid.UUID {
	t.Helper()

	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	return id
}

func generateSchedule(t *testing.T, f *apiFixture, token string, body map[string]any) generateScheduleResponse {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/study-schedules/generate", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, "generate failed: %s", rec.Body.String())

	var resp generateScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Schedule)
	return resp
}

// seedSchedule plants a stored schedule directly, bypassing generation,
// so list tests control creation times exactly.
func seedSchedule(t *testing.T, f *apiFixture, userID uuid.UUID, title string, createdAt time.Time) uuid.UUID {
	t.Helper()

	session, err := studyplanDomain.NewStudySession(
		1, createdAt.AddDate(0, 0, 1), []string{"Review"}, 2.0, studyplanDomain.FocusMedium, "Warm up first.")
	require.NoError(t, err)

	id := uuid.New()
	schedule := studyplanDomain.RehydrateSchedule(studyplanDomain.ScheduleSnapshot{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Subject:   "History",
		Deadline:  createdAt.AddDate(0, 0, 7),
		Topics:    []string{"Review"},
		Sessions:  []studyplanDomain.StudySession{session},
		Summary:   "Seeded plan.",
		Source:    studyplanDomain.SourceRules,
		Status:    studyplanDomain.StatusActive,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
	require.NoError(t, f.schedules.Save(context.Background(), schedule))
	return id
}

func TestScheduleHandler_Generate(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "student@example.com")

	resp := generateSchedule(t, f, token, map[string]any{
		"title":         "Algorithms Midterm",
		"subject":       "Computer Science",
		"material_text": lectureNotes,
		"deadline":      time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
	})

	schedule := resp.Schedule
	assert.Equal(t, "Algorithms Midterm", schedule.Title)
	assert.Equal(t, "Computer Science", schedule.Subject)
	assert.Equal(t, "rules", schedule.Source, "without a drafter the planner runs")
	assert.Equal(t, "active", schedule.Status)
	assert.NotEmpty(t, schedule.ExtractedTopics)
	assert.NotEmpty(t, schedule.Sessions)
	assert.NotEmpty(t, schedule.AITips)
	assert.Equal(t, len(schedule.ExtractedTopics), schedule.TotalTopics)
	assert.Greater(t, schedule.TotalHours, 0.0)
	assert.Nil(t, schedule.TaskID)

	for i, session := range schedule.Sessions {
		assert.Equal(t, i+1, session.Day)
		assert.NotEmpty(t, session.Topics)
		assert.NotEmpty(t, session.DayName)
	}

	assert.Positive(t, resp.Feasibility.DaysAvailable)
	assert.NotEmpty(t, resp.Feasibility.Recommendation)
}

func TestScheduleHandler_GenerateDefaultsTitle(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "student@example.com")

	resp := generateSchedule(t, f, token, map[string]any{
		"subject":  "Biology",
		"deadline": time.Now().AddDate(0, 0, 5).Format(time.RFC3339),
	})

	assert.Equal(t, "Biology Study Plan", resp.Schedule.Title)
	assert.NotEmpty(t, resp.Schedule.Sessions, "empty material still yields a generic plan")
}

func TestScheduleHandler_GenerateLinksTask(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "student@example.com")
	task := createTask(t, f, token, "Midterm", time.Now().AddDate(0, 0, 7), "hard")

	resp := generateSchedule(t, f, token, map[string]any{
		"task_id":  task.ID.String(),
		"subject":  "Physics",
		"deadline": time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
	})

	require.NotNil(t, resp.Schedule.TaskID)
	assert.Equal(t, task.ID, *resp.Schedule.TaskID)
}

func TestScheduleHandler_GenerateValidation(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "student@example.com")

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing subject",
			body: map[string]any{"deadline": time.Now().AddDate(0, 0, 7).Format(time.RFC3339)},
		},
		{
			name: "missing deadline",
			body: map[string]any{"subject": "Chemistry"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/study-schedules/generate", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestScheduleHandler_ListNewestFirst(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "student@example.com")
	foreign := f.register(t, "other@example.com")
	userID := userIDForToken(t, f, token)
	now := time.Now().UTC()

	seedSchedule(t, f, userID, "Oldest", now.Add(-3*time.Hour))
	seedSchedule(t, f, userID, "Newest", now.Add(-1*time.Hour))
	seedSchedule(t, f, userID, "Middle", now.Add(-2*time.Hour))
	seedSchedule(t, f, userIDForToken(t, f, foreign), "Foreign", now)

	rec := f.do(t, http.MethodGet, "/api/study-schedules", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var schedules []queries.StudyScheduleDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schedules))
	require.Len(t, schedules, 3)
	assert.Equal(t, "Newest", schedules[0].Title)
	assert.Equal(t, "Middle", schedules[1].Title)
	assert.Equal(t, "Oldest", schedules[2].Title)
}

func TestScheduleHandler_ListStatusFilter(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "student@example.com")
	userID := userIDForToken(t, f, token)
	now := time.Now().UTC()

	active := seedSchedule(t, f, userID, "Active Plan", now.Add(-2*time.Hour))
	completed := seedSchedule(t, f, userID, "Finished Plan", now.Add(-1*time.Hour))

	rec := f.do(t, http.MethodPost, "/api/study-schedules/"+completed.String()+"/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/study-schedules?status=active", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var schedules []queries.StudyScheduleDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schedules))
	require.Len(t, schedules, 1)
	assert.Equal(t, active, schedules[0].ID)

	rec = f.do(t, http.MethodGet, "/api/study-schedules?status=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleHandler_Get(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "student@example.com")
	resp := generateSchedule(t, f, token, map[string]any{
		"subject":       "Chemistry",
		"material_text": lectureNotes,
		"deadline":      time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
	})

	rec := f.do(t, http.MethodGet, "/api/study-schedules/"+resp.Schedule.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto queries.StudyScheduleDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, resp.Schedule.ID, dto.ID)
	assert.Equal(t, resp.Schedule.Title, dto.Title)
}

func TestScheduleHandler_GetRejectsForeignSchedule(t *testing.T) {
	f := newAPIFixture(t)
	owner := f.register(t, "owner@example.com")
	intruder := f.register(t, "intruder@example.com")
	id := seedSchedule(t, f, userIDForToken(t, f, owner), "Private Plan", time.Now().UTC())

	rec := f.do(t, http.MethodGet, "/api/study-schedules/"+id.String(), intruder, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code, "foreign schedules read as missing")
}

func TestScheduleHandler_Complete(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "student@example.com")
	id := seedSchedule(t, f, userIDForToken(t, f, token), "Exam Plan", time.Now().UTC())

	rec := f.do(t, http.MethodPost, "/api/study-schedules/"+id.String()+"/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dto queries.StudyScheduleDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "completed", dto.Status)

	rec = f.do(t, http.MethodPost, "/api/study-schedules/"+id.String()+"/complete", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "completing twice must fail")
}

func TestScheduleHandler_Delete(t *testing.T) {
	f := newAPIFixture(t)
	token := f.register(t, "student@example.com")
	id := seedSchedule(t, f, userIDForToken(t, f, token), "Scratch Plan", time.Now().UTC())

	rec := f.do(t, http.MethodDelete, "/api/study-schedules/"+id.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Schedule deleted successfully", resp["message"])

	rec = f.do(t, http.MethodGet, "/api/study-schedules/"+id.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
