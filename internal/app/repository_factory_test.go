package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusense/edusense/internal/coursework/domain/task"
	"github.com/edusense/edusense/internal/coursework/domain/value_objects"
	courseworkPersistence "github.com/edusense/edusense/internal/coursework/infrastructure/persistence"
	identityPersistence "github.com/edusense/edusense/internal/identity/infrastructure/persistence"
	"github.com/edusense/edusense/internal/shared/infrastructure/database"
	"github.com/edusense/edusense/internal/shared/infrastructure/migrations"
	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
	studyplanPersistence "github.com/edusense/edusense/internal/studyplan/infrastructure/persistence"
)

// openTestConnection opens a migrated SQLite database in a temp dir. The
// SQLite driver is registered by this package's container imports.
func openTestConnection(t *testing.T) database.Connection {
	t.Helper()

	ctx := context.Background()
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "factory.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

func TestRepositoryFactory_SQLiteSelection(t *testing.T) {
	conn := openTestConnection(t)
	factory := NewRepositoryFactory(conn)

	assert.Equal(t, database.DriverSQLite, factory.Driver())
	assert.Equal(t, conn, factory.Connection())

	assert.IsType(t, &identityPersistence.SQLiteUserRepository{}, factory.UserRepository())
	assert.IsType(t, &courseworkPersistence.SQLiteTaskRepository{}, factory.TaskRepository())
	assert.IsType(t, &studyplanPersistence.SQLiteScheduleRepository{}, factory.ScheduleRepository())
	assert.IsType(t, &outbox.SQLiteRepository{}, factory.OutboxRepository())
}

func TestRepositoryFactory_TaskRoundTrip(t *testing.T) {
	conn := openTestConnection(t)
	taskRepo := NewRepositoryFactory(conn).TaskRepository()

	ctx := context.Background()
	deadline := time.Now().UTC().Add(48 * time.Hour)
	newTask, err := task.NewTask(uuid.New(), "Factory round trip", "Chemistry", deadline, value_objects.DifficultyMedium)
	require.NoError(t, err)

	require.NoError(t, taskRepo.Save(ctx, newTask))

	found, err := taskRepo.FindByID(ctx, newTask.ID())
	require.NoError(t, err)
	assert.Equal(t, "Factory round trip", found.Title())
	assert.Equal(t, value_objects.DifficultyMedium, found.Difficulty())
}
