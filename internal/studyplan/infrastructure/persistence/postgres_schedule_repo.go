// Package persistence provides the PostgreSQL and SQLite repositories for
// study schedules. Sessions are stored as a JSON document; the topic and
// tip lists use native arrays on PostgreSQL and JSON text on SQLite.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/edusense/edusense/internal/shared/infrastructure/database"
	"github.com/edusense/edusense/internal/studyplan/domain"
)

// ErrOptimisticLocking is returned when a save races a concurrent update
// of the same aggregate.
var ErrOptimisticLocking = errors.New("optimistic locking conflict")

// PostgresScheduleRepository implements domain.Repository on PostgreSQL.
type PostgresScheduleRepository struct {
	conn database.Connection
}

// NewPostgresScheduleRepository creates a PostgreSQL schedule repository.
func NewPostgresScheduleRepository(conn database.Connection) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{conn: conn}
}

// scheduleRow is the scan target for a study_schedules row. The total_days
// and total_hours columns are derived from sessions on write and exist for
// SQL-side reporting; rehydration recomputes them instead of reading them.
type scheduleRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TaskID    uuid.NullUUID
	Title     string
	Subject   string
	Deadline  time.Time
	Topics    []string
	Sessions  []byte
	Tips      []string
	Summary   string
	Source    string
	Status    string
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

const pgSelectSchedule = `
	SELECT id, user_id, task_id, title, subject, deadline, topics, sessions,
	       tips, summary, source, status, version, created_at, updated_at
	FROM study_schedules
`

// Save upserts a schedule. The update arm only fires when the stored
// version still matches the one the aggregate was loaded with; a stale
// aggregate gets ErrOptimisticLocking instead of silently clobbering
// newer state.
func (r *PostgresScheduleRepository) Save(ctx context.Context, s *domain.StudySchedule) error {
	query := `
		INSERT INTO study_schedules (
			id, user_id, task_id, title, subject, deadline, topics, sessions,
			tips, summary, source, status, total_days, total_hours, version,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			subject = EXCLUDED.subject,
			deadline = EXCLUDED.deadline,
			topics = EXCLUDED.topics,
			sessions = EXCLUDED.sessions,
			tips = EXCLUDED.tips,
			summary = EXCLUDED.summary,
			source = EXCLUDED.source,
			status = EXCLUDED.status,
			total_days = EXCLUDED.total_days,
			total_hours = EXCLUDED.total_hours,
			version = study_schedules.version + 1,
			updated_at = NOW()
		WHERE study_schedules.version = $15
		RETURNING version
	`

	sessionsJSON, err := json.Marshal(s.Sessions())
	if err != nil {
		return err
	}

	var newVersion int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err = exec.QueryRow(ctx, query,
		s.ID(),
		s.UserID(),
		s.TaskID(),
		s.Title(),
		s.Subject(),
		s.Deadline(),
		textArray(s.Topics()),
		sessionsJSON,
		textArray(s.Tips()),
		s.Summary(),
		s.Source().String(),
		s.Status().String(),
		s.TotalDays(),
		s.TotalHours(),
		s.Version(),
		s.CreatedAt(),
		s.UpdatedAt(),
	).Scan(&newVersion)

	if err != nil {
		if database.IsNoRows(err) {
			return ErrOptimisticLocking
		}
		return err
	}

	return nil
}

// FindByID retrieves a schedule by its ID.
func (r *PostgresScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StudySchedule, error) {
	query := pgSelectSchedule + `WHERE id = $1`

	var row scheduleRow
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query, id).Scan(
		&row.ID,
		&row.UserID,
		&row.TaskID,
		&row.Title,
		&row.Subject,
		&row.Deadline,
		pq.Array(&row.Topics),
		&row.Sessions,
		pq.Array(&row.Tips),
		&row.Summary,
		&row.Source,
		&row.Status,
		&row.Version,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}

	return rowToSchedule(row)
}

// FindByUserID retrieves all schedules for a user, newest first.
func (r *PostgresScheduleRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.StudySchedule, error) {
	query := pgSelectSchedule + `WHERE user_id = $1 ORDER BY created_at DESC`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var schedules []*domain.StudySchedule
	for rows.Next() {
		var row scheduleRow
		err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.TaskID,
			&row.Title,
			&row.Subject,
			&row.Deadline,
			pq.Array(&row.Topics),
			&row.Sessions,
			pq.Array(&row.Tips),
			&row.Summary,
			&row.Source,
			&row.Status,
			&row.Version,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		s, err := rowToSchedule(row)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

// Delete removes a schedule permanently.
func (r *PostgresScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, `DELETE FROM study_schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrScheduleNotFound
	}

	return nil
}

// textArray keeps empty lists as empty arrays; a nil slice would be
// written as NULL and violate the column constraint.
func textArray(ss []string) any {
	if ss == nil {
		ss = []string{}
	}
	return pq.Array(ss)
}

func rowToSchedule(row scheduleRow) (*domain.StudySchedule, error) {
	source, err := domain.ParseSource(row.Source)
	if err != nil {
		return nil, fmt.Errorf("invalid source in database: %w", err)
	}

	status, err := domain.ParseStatus(row.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid status in database: %w", err)
	}

	var sessions []domain.StudySession
	if err := json.Unmarshal(row.Sessions, &sessions); err != nil {
		return nil, fmt.Errorf("invalid sessions in database: %w", err)
	}

	var taskID *uuid.UUID
	if row.TaskID.Valid {
		id := row.TaskID.UUID
		taskID = &id
	}

	return domain.RehydrateSchedule(domain.ScheduleSnapshot{
		ID:        row.ID,
		UserID:    row.UserID,
		TaskID:    taskID,
		Title:     row.Title,
		Subject:   row.Subject,
		Deadline:  row.Deadline,
		Topics:    row.Topics,
		Sessions:  sessions,
		Summary:   row.Summary,
		Tips:      row.Tips,
		Source:    source,
		Status:    status,
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}), nil
}
