package schedule

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edusense/edusense/adapter/cli"
	internalApp "github.com/edusense/edusense/internal/app"
	"github.com/edusense/edusense/internal/studyplan/application/queries"
	"github.com/edusense/edusense/pkg/config"
)

// setupLocalModeTestApp creates a test application with SQLite for integration tests.
func setupLocalModeTestApp(t *testing.T) (*cli.App, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "schedule-cli-test-*")
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:         "test",
		LocalMode:      true,
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(tmpDir, "test.db"),
		LogLevel:       "error",
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		BcryptCost:     bcrypt.MinCost,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	ctx := context.Background()
	container, err := internalApp.NewLocalContainer(ctx, cfg, logger)
	require.NoError(t, err)

	userID, err := container.EnsureLocalUser(ctx)
	require.NoError(t, err)

	cliApp := cli.NewApp(
		container.CreateTaskHandler,
		container.UpdateTaskHandler,
		container.StartTaskHandler,
		container.CompleteTaskHandler,
		container.DeleteTaskHandler,
		container.GetTaskHandler,
		container.ListTasksHandler,
		container.PriorityReportHandler,
		container.WorkloadReportHandler,
		container.GenerateScheduleHandler,
		container.CompleteScheduleHandler,
		container.DeleteScheduleHandler,
		container.GetScheduleHandler,
		container.ListSchedulesHandler,
	)
	cliApp.SetCurrentUserID(userID)

	cleanup := func() {
		container.Close()
		os.RemoveAll(tmpDir)
	}

	return cliApp, cleanup
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func resetGenerateFlags() {
	genSubject = ""
	genTitle = ""
	genDeadline = ""
	genTaskID = ""
	genMaterial = ""
}

func TestGenerateCmd_CreatesSchedule(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	resetGenerateFlags()
	genSubject = "Computer Science"
	genDeadline = futureDate(7)

	generateCmd.SetContext(ctx)
	require.NoError(t, generateCmd.RunE(generateCmd, nil))

	schedules, err := app.ListSchedulesHandler.Handle(ctx, queries.ListSchedulesQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, schedules, 1)

	assert.Equal(t, "Computer Science Study Plan", schedules[0].Title)
	assert.Equal(t, "rules", schedules[0].Source)
	assert.Equal(t, "active", schedules[0].Status)
	assert.NotEmpty(t, schedules[0].Sessions)
}

func TestGenerateCmd_WithMaterialFile(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	tmpDir, err := os.MkdirTemp("", "material-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	material := filepath.Join(tmpDir, "notes.md")
	content := "# Graph Traversal\nBreadth-first search explores neighbors level by level.\n\n" +
		"# Shortest Paths\nDijkstra's algorithm grows a frontier of settled vertices.\n"
	require.NoError(t, os.WriteFile(material, []byte(content), 0o600))

	resetGenerateFlags()
	genSubject = "Algorithms"
	genTitle = "Exam Countdown"
	genDeadline = futureDate(10)
	genMaterial = material

	generateCmd.SetContext(ctx)
	require.NoError(t, generateCmd.RunE(generateCmd, nil))

	schedules, err := app.ListSchedulesHandler.Handle(ctx, queries.ListSchedulesQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, schedules, 1)

	assert.Equal(t, "Exam Countdown", schedules[0].Title)
	assert.Contains(t, schedules[0].ExtractedTopics, "Graph Traversal")
	assert.Contains(t, schedules[0].ExtractedTopics, "Shortest Paths")
}

func TestGenerateCmd_MissingMaterialFile(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	resetGenerateFlags()
	genSubject = "Algorithms"
	genDeadline = futureDate(10)
	genMaterial = "/nonexistent/notes.md"

	generateCmd.SetContext(ctx)
	err := generateCmd.RunE(generateCmd, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read material file")
}

func TestGenerateCmd_InvalidDeadline(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	resetGenerateFlags()
	genSubject = "Biology"
	genDeadline = "next tuesday"

	generateCmd.SetContext(ctx)
	err := generateCmd.RunE(generateCmd, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid deadline format")
}

func TestCompleteCmd_MarksScheduleCompleted(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	resetGenerateFlags()
	genSubject = "Physics"
	genDeadline = futureDate(5)

	generateCmd.SetContext(ctx)
	require.NoError(t, generateCmd.RunE(generateCmd, nil))

	schedules, err := app.ListSchedulesHandler.Handle(ctx, queries.ListSchedulesQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, schedules, 1)

	completeCmd.SetContext(ctx)
	require.NoError(t, completeCmd.RunE(completeCmd, []string{schedules[0].ID.String()}))

	active, err := app.ListSchedulesHandler.Handle(ctx, queries.ListSchedulesQuery{
		UserID: app.CurrentUserID,
		Status: "active",
	})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestDeleteCmd_RemovesSchedule(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	resetGenerateFlags()
	genSubject = "Chemistry"
	genDeadline = futureDate(5)

	generateCmd.SetContext(ctx)
	require.NoError(t, generateCmd.RunE(generateCmd, nil))

	schedules, err := app.ListSchedulesHandler.Handle(ctx, queries.ListSchedulesQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, schedules, 1)

	deleteCmd.SetContext(ctx)
	require.NoError(t, deleteCmd.RunE(deleteCmd, []string{schedules[0].ID.String()}))

	schedules, err = app.ListSchedulesHandler.Handle(ctx, queries.ListSchedulesQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestShowCmd_DisplaysSchedule(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()

	resetGenerateFlags()
	genSubject = "History"
	genDeadline = futureDate(4)

	generateCmd.SetContext(ctx)
	require.NoError(t, generateCmd.RunE(generateCmd, nil))

	schedules, err := app.ListSchedulesHandler.Handle(ctx, queries.ListSchedulesQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, schedules, 1)

	showCmd.SetContext(ctx)
	require.NoError(t, showCmd.RunE(showCmd, []string{schedules[0].ID.String()}))
}
