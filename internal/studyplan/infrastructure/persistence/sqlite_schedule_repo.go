package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/shared/infrastructure/database"
	"github.com/edusense/edusense/internal/studyplan/domain"
)

// sqliteTimeLayout is fixed width so stored timestamps compare correctly
// as strings in WHERE clauses and ORDER BY.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteScheduleRepository implements domain.Repository on SQLite. The
// topic, session, and tip lists are stored as JSON text; timestamps as
// RFC 3339 text in UTC.
type SQLiteScheduleRepository struct {
	conn database.Connection
}

// NewSQLiteScheduleRepository creates a SQLite schedule repository.
func NewSQLiteScheduleRepository(conn database.Connection) *SQLiteScheduleRepository {
	return &SQLiteScheduleRepository{conn: conn}
}

const sqliteSelectSchedule = `
	SELECT id, user_id, task_id, title, subject, deadline, topics, sessions,
	       tips, summary, source, status, version, created_at, updated_at
	FROM study_schedules
`

// Save upserts a schedule with the same version guard as the PostgreSQL
// repository: a stale aggregate gets ErrOptimisticLocking.
func (r *SQLiteScheduleRepository) Save(ctx context.Context, s *domain.StudySchedule) error {
	query := `
		INSERT INTO study_schedules (
			id, user_id, task_id, title, subject, deadline, topics, sessions,
			tips, summary, source, status, total_days, total_hours, version,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			subject = excluded.subject,
			deadline = excluded.deadline,
			topics = excluded.topics,
			sessions = excluded.sessions,
			tips = excluded.tips,
			summary = excluded.summary,
			source = excluded.source,
			status = excluded.status,
			total_days = excluded.total_days,
			total_hours = excluded.total_hours,
			version = study_schedules.version + 1,
			updated_at = ?
		WHERE study_schedules.version = ?
		RETURNING version
	`

	topicsJSON, err := json.Marshal(s.Topics())
	if err != nil {
		return err
	}
	sessionsJSON, err := json.Marshal(s.Sessions())
	if err != nil {
		return err
	}
	tipsJSON, err := json.Marshal(emptyIfNil(s.Tips()))
	if err != nil {
		return err
	}

	var taskID any
	if s.TaskID() != nil {
		taskID = s.TaskID().String()
	}

	var newVersion int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err = exec.QueryRow(ctx, query,
		s.ID().String(),
		s.UserID().String(),
		taskID,
		s.Title(),
		s.Subject(),
		sqliteTime(s.Deadline()),
		string(topicsJSON),
		string(sessionsJSON),
		string(tipsJSON),
		s.Summary(),
		s.Source().String(),
		s.Status().String(),
		s.TotalDays(),
		s.TotalHours(),
		s.Version(),
		sqliteTime(s.CreatedAt()),
		sqliteTime(s.UpdatedAt()),
		sqliteTime(time.Now()),
		s.Version(),
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
func (r *SQLiteScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StudySchedule, error) {
	query := sqliteSelectSchedule + `WHERE id = ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	row, err := scanSQLiteSchedule(exec.QueryRow(ctx, query, id.String()))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}

	return rowToSchedule(row)
}

// FindByUserID retrieves all schedules for a user, newest first.
func (r *SQLiteScheduleRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.StudySchedule, error) {
	query := sqliteSelectSchedule + `WHERE user_id = ? ORDER BY created_at DESC`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var schedules []*domain.StudySchedule
	for rows.Next() {
		row, err := scanSQLiteSchedule(rows)
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
func (r *SQLiteScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, `DELETE FROM study_schedules WHERE id = ?`, id.String())
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

func scanSQLiteSchedule(row database.Row) (scheduleRow, error) {
	var (
		out       scheduleRow
		taskID    sql.NullString
		deadline  string
		topics    string
		sessions  string
		tips      string
		createdAt string
		updatedAt string
	)

	err := row.Scan(
		&out.ID,
		&out.UserID,
		&taskID,
		&out.Title,
		&out.Subject,
		&deadline,
		&topics,
		&sessions,
		&tips,
		&out.Summary,
		&out.Source,
		&out.Status,
		&out.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return scheduleRow{}, err
	}

	if taskID.Valid {
		id, err := uuid.Parse(taskID.String)
		if err != nil {
			return scheduleRow{}, fmt.Errorf("invalid task id in database: %w", err)
		}
		out.TaskID = uuid.NullUUID{UUID: id, Valid: true}
	}

	if err := json.Unmarshal([]byte(topics), &out.Topics); err != nil {
		return scheduleRow{}, fmt.Errorf("invalid topics in database: %w", err)
	}
	if err := json.Unmarshal([]byte(tips), &out.Tips); err != nil {
		return scheduleRow{}, fmt.Errorf("invalid tips in database: %w", err)
	}
	out.Sessions = []byte(sessions)

	if out.Deadline, err = parseSQLiteTime(deadline); err != nil {
		return scheduleRow{}, err
	}
	if out.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return scheduleRow{}, err
	}
	if out.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return scheduleRow{}, err
	}

	return out, nil
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

func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
