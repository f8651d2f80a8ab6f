package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/coursework/domain/task"
	"github.com/edusense/edusense/internal/coursework/domain/value_objects"
	"github.com/edusense/edusense/internal/shared/infrastructure/database"
)

// ErrOptimisticLocking is returned when a save races a concurrent update
// of the same aggregate.
var ErrOptimisticLocking = errors.New("optimistic locking conflict")

// PostgresTaskRepository implements task.Repository on PostgreSQL.
type PostgresTaskRepository struct {
	conn database.Connection
}

// NewPostgresTaskRepository creates a PostgreSQL task repository.
func NewPostgresTaskRepository(conn database.Connection) *PostgresTaskRepository {
	return &PostgresTaskRepository{conn: conn}
}

// taskRow is the scan target for a tasks row.
type taskRow struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         string
	Subject       string
	Description   *string
	Deadline      time.Time
	Difficulty    string
	Status        string
	PriorityScore *float64
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const pgSelectTask = `
	SELECT id, user_id, title, subject, description, deadline, difficulty,
	       status, priority_score, version, created_at, updated_at
	FROM tasks
`

// Save upserts a task. The update arm only fires when the stored version
// still matches the one the aggregate was loaded with; a stale aggregate
// gets ErrOptimisticLocking instead of silently clobbering newer state.
func (r *PostgresTaskRepository) Save(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, subject, description, deadline, difficulty,
			status, priority_score, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			subject = EXCLUDED.subject,
			description = EXCLUDED.description,
			deadline = EXCLUDED.deadline,
			difficulty = EXCLUDED.difficulty,
			status = EXCLUDED.status,
			priority_score = EXCLUDED.priority_score,
			version = tasks.version + 1,
			updated_at = NOW()
		WHERE tasks.version = $10
		RETURNING version
	`

	var description *string
	if t.Description() != "" {
		desc := t.Description()
		description = &desc
	}

	var newVersion int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		t.ID(),
		t.UserID(),
		t.Title(),
		t.Subject(),
		description,
		t.Deadline(),
		t.Difficulty().String(),
		t.Status().String(),
		t.PriorityScore(),
		t.Version(),
		t.CreatedAt(),
		t.UpdatedAt(),
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
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := pgSelectTask + `WHERE id = $1`

	var row taskRow
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query, id).Scan(
		&row.ID,
		&row.UserID,
		&row.Title,
		&row.Subject,
		&row.Description,
		&row.Deadline,
		&row.Difficulty,
		&row.Status,
		&row.PriorityScore,
		&row.Version,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}

	return rowToTask(row)
}

// FindByUserID retrieves all tasks for a user, soonest deadline first.
func (r *PostgresTaskRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := pgSelectTask + `WHERE user_id = $1 ORDER BY deadline, created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// FindActive retrieves a user's tasks that are not yet completed.
func (r *PostgresTaskRepository) FindActive(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := pgSelectTask + `WHERE user_id = $1 AND status != 'completed' ORDER BY deadline, created_at`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// Delete removes a task permanently.
func (r *PostgresTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
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
// The score is derived state, not a user edit, so it must not invalidate
// optimistic locks other requests are holding.
func (r *PostgresTaskRepository) UpdatePriorityScore(ctx context.Context, id uuid.UUID, score float64) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, `UPDATE tasks SET priority_score = $2 WHERE id = $1`, id, score)
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

func scanTasks(rows database.Rows) ([]*task.Task, error) {
	var tasks []*task.Task

	for rows.Next() {
		var row taskRow
		err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.Title,
			&row.Subject,
			&row.Description,
			&row.Deadline,
			&row.Difficulty,
			&row.Status,
			&row.PriorityScore,
			&row.Version,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
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

func rowToTask(row taskRow) (*task.Task, error) {
	difficulty, err := value_objects.ParseDifficulty(row.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("invalid difficulty in database: %w", err)
	}

	status, err := value_objects.ParseStatus(row.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid status in database: %w", err)
	}

	var description string
	if row.Description != nil {
		description = *row.Description
	}

	return task.Rehydrate(task.Snapshot{
		ID:            row.ID,
		UserID:        row.UserID,
		Title:         row.Title,
		Subject:       row.Subject,
		Description:   description,
		Deadline:      row.Deadline,
		Difficulty:    difficulty,
		Status:        status,
		PriorityScore: row.PriorityScore,
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}), nil
}
