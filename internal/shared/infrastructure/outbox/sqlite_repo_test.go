package outbox_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusense/edusense/internal/shared/infrastructure/database"
	_ "github.com/edusense/edusense/internal/shared/infrastructure/database/sqlite"
	"github.com/edusense/edusense/internal/shared/infrastructure/migrations"
	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
)

func newSQLiteRepo(t *testing.T) *outbox.SQLiteRepository {
	t.Helper()

	ctx := context.Background()
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "outbox_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Run(ctx, conn))

	return outbox.NewSQLiteRepository(conn)
}

func TestSQLiteRepository_SaveAndGetUnpublished(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	msg := storedMessage("coursework.task.created")
	require.NoError(t, repo.Save(ctx, msg))
	assert.NotZero(t, msg.ID)

	found, err := repo.GetUnpublished(ctx, 10)

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, msg.EventID, found[0].EventID)
	assert.Equal(t, msg.AggregateID, found[0].AggregateID)
	assert.Equal(t, "coursework.task.created", found[0].RoutingKey)
	assert.JSONEq(t, string(msg.Payload), string(found[0].Payload))
	assert.WithinDuration(t, msg.CreatedAt, found[0].CreatedAt, time.Second)
}

func TestSQLiteRepository_SaveBatch(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	msgs := []*outbox.Message{
		storedMessage("coursework.task.created"),
		storedMessage("coursework.task.completed"),
	}
	require.NoError(t, repo.SaveBatch(ctx, msgs))

	found, err := repo.GetUnpublished(ctx, 10)

	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)
}

func TestSQLiteRepository_MarkPublished(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	msg := storedMessage("coursework.task.created")
	require.NoError(t, repo.Save(ctx, msg))
	require.NoError(t, repo.MarkPublished(ctx, msg.ID))

	found, err := repo.GetUnpublished(ctx, 10)

	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSQLiteRepository_MarkFailedSchedulesRetry(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	msg := storedMessage("coursework.task.created")
	require.NoError(t, repo.Save(ctx, msg))

	// A retry scheduled in the future hides the message from the poller.
	future := time.Now().Add(1 * time.Hour)
	require.NoError(t, repo.MarkFailed(ctx, msg.ID, "broker unreachable", future))

	dueNow, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, dueNow)

	failed, err := repo.GetFailed(ctx, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, failed)

	// Once the backoff elapses the message is eligible again.
	past := time.Now().Add(-1 * time.Minute)
	require.NoError(t, repo.MarkFailed(ctx, msg.ID, "broker unreachable", past))

	due, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 2, due[0].RetryCount)
	require.NotNil(t, due[0].LastError)
	assert.Equal(t, "broker unreachable", *due[0].LastError)
}

func TestSQLiteRepository_MarkDead(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	msg := storedMessage("coursework.task.created")
	require.NoError(t, repo.Save(ctx, msg))
	require.NoError(t, repo.MarkDead(ctx, msg.ID, "max retries exceeded"))

	found, err := repo.GetUnpublished(ctx, 10)

	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSQLiteRepository_DeleteOld(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	msg := storedMessage("coursework.task.created")
	require.NoError(t, repo.Save(ctx, msg))
	require.NoError(t, repo.MarkPublished(ctx, msg.ID))

	// Published just now, so a 7 day retention keeps it.
	deleted, err := repo.DeleteOld(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	// Zero retention removes everything published.
	deleted, err = repo.DeleteOld(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
