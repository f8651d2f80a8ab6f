package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/coursework/domain/task"
	"github.com/edusense/edusense/internal/shared/infrastructure/database"
)

// sqliteTimeLayout is fixed width so stored timestamps compare correctly
// as strings in WHERE clauses and ORDER BY.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteTaskRepository implements task.Repository on SQLite. Timestamps
// are stored as RFC 3339 text in UTC.
type SQLiteTaskRepository struct {
	conn database.Connection
}

// NewSQLiteTaskRepository creates a SQLite task repository.
func NewSQLiteTaskRepository(conn database.Connection) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{conn: conn}
}

const sqliteSelectTask = `
	SELECT id, user_id, title, subject, description, deadline, difficulty,
	       status, priority_score, version, created_at, updated_at
	FROM tasks
`

// Save upserts a task with the same version guard as the PostgreSQL
// repository: a stale aggregate gets ErrOptimisticLocking.
func (r *SQLiteTaskRepository) Save(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, subject, description, deadline, difficulty,
			status, priority_score, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			subject = excluded.subject,
			description = excluded.description,
			deadline = excluded.deadline,
			difficulty = excluded.difficulty,
			status = excluded.status,
			priority_score = excluded.priority_score,
			version = tasks.version + 1,
			updated_at = ?
		WHERE tasks.version = ?
		RETURNING version
	`

	var newVersion int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		t.ID().String(),
		t.UserID().String(),
		t.Title(),
		t.Subject(),
		nullableString(t.Description()),
		sqliteTime(t.Deadline()),
		t.Difficulty().String(),
		t.Status().String(),
		nullableFloat(t.PriorityScore()),
		t.Version(),
		sqliteTime(t.CreatedAt()),
		sqliteTime(t.UpdatedAt()),
		sqliteTime(time.Now()),
		t.Version(),
	).Scan(&newVersion)

	if err != nil {
		if database.IsNoRows(err) {
			return ErrOptimisticLocking
		}
		return err
	}

	return nil
}

// FindByID retrieves a task by its ID.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := sqliteSelectTask + `WHERE id = ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	row, err := scanSQLiteTask(exec.QueryRow(ctx, query, id.String()))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}

	return rowToTask(row)
}

// FindByUserID retrieves all tasks for a user, soonest deadline first.
func (r *SQLiteTaskRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := sqliteSelectTask + `WHERE user_id = ? ORDER BY deadline, created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanSQLiteTasks(rows)
}

// FindActive retrieves a user's tasks that are not yet completed.
func (r *SQLiteTaskRepository) FindActive(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := sqliteSelectTask + `WHERE user_id = ? AND status != 'completed' ORDER BY deadline, created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanSQLiteTasks(rows)
}

// Delete removes a task permanently.
func (r *SQLiteTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrNotFound
	}

	return nil
}

// UpdatePriorityScore stores a computed score without bumping the version.
func (r *SQLiteTaskRepository) UpdatePriorityScore(ctx context.Context, id uuid.UUID, score float64) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, `UPDATE tasks SET priority_score = ? WHERE id = ?`, score, id.String())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrNotFound
	}

	return nil
}

func scanSQLiteTask(row database.Row) (taskRow, error) {
	var (
		out       taskRow
		desc      sql.NullString
		deadline  string
		score     sql.NullFloat64
		createdAt string
		updatedAt string
	)

	err := row.Scan(
		&out.ID,
		&out.UserID,
		&out.Title,
		&out.Subject,
		&desc,
		&deadline,
		&out.Difficulty,
		&out.Status,
		&score,
		&out.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return taskRow{}, err
	}

	if desc.Valid {
		out.Description = &desc.String
	}
	if score.Valid {
		out.PriorityScore = &score.Float64
	}

	if out.Deadline, err = parseSQLiteTime(deadline); err != nil {
		return taskRow{}, err
	}
	if out.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return taskRow{}, err
	}
	if out.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return taskRow{}, err
	}

	return out, nil
}

func scanSQLiteTasks(rows database.Rows) ([]*task.Task, error) {
	var tasks []*task.Task

	for rows.Next() {
		row, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}

		t, err := rowToTask(row)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", value, err)
	}
	return t, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
