package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusense/edusense/internal/shared/infrastructure/database"
)

func openTestConnection(t *testing.T) database.Connection {
	t.Helper()

	cfg := database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	}

	conn, err := NewConnection(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestNewConnection(t *testing.T) {
	ctx := context.Background()
	conn := openTestConnection(t)

	require.NoError(t, conn.Ping(ctx))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestConnection_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	conn := openTestConnection(t)

	_, err := conn.Exec(ctx, `CREATE TABLE subjects (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	result, err := conn.Exec(ctx, `INSERT INTO subjects (id, name) VALUES (?, ?)`, "1", "Calculus")
	require.NoError(t, err)

	rowsAffected, err := result.RowsAffected()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rowsAffected)

	row := conn.QueryRow(ctx, `SELECT id, name FROM subjects WHERE id = ?`, "1")
	var id, name string
	require.NoError(t, row.Scan(&id, &name))
	assert.Equal(t, "1", id)
	assert.Equal(t, "Calculus", name)

	_, err = conn.Exec(ctx, `INSERT INTO subjects (id, name) VALUES (?, ?)`, "2", "Physics")
	require.NoError(t, err)

	rows, err := conn.Query(ctx, `SELECT name FROM subjects ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	assert.NoError(t, rows.Err())
	assert.Equal(t, []string{"Calculus", "Physics"}, names)
}

func TestConnection_Transaction(t *testing.T) {
	ctx := context.Background()
	conn := openTestConnection(t)

	_, err := conn.Exec(ctx, `CREATE TABLE subjects (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	t.Run("commit persists changes", func(t *testing.T) {
		tx, err := conn.BeginTx(ctx)
		require.NoError(t, err)

		_, err = tx.Exec(ctx, `INSERT INTO subjects (id, name) VALUES (?, ?)`, "1", "Calculus")
		require.NoError(t, err)

		require.NoError(t, tx.Commit(ctx))

		row := conn.QueryRow(ctx, `SELECT name FROM subjects WHERE id = ?`, "1")
		var name string
		require.NoError(t, row.Scan(&name))
		assert.Equal(t, "Calculus", name)
	})

	t.Run("rollback discards changes", func(t *testing.T) {
		tx, err := conn.BeginTx(ctx)
		require.NoError(t, err)

		_, err = tx.Exec(ctx, `INSERT INTO subjects (id, name) VALUES (?, ?)`, "2", "Physics")
		require.NoError(t, err)

		require.NoError(t, tx.Rollback(ctx))

		row := conn.QueryRow(ctx, `SELECT COUNT(*) FROM subjects`)
		var count int
		require.NoError(t, row.Scan(&count))
		assert.Equal(t, 1, count)
	})
}
