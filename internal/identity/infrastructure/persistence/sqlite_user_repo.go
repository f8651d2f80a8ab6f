package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/identity/domain"
	"github.com/edusense/edusense/internal/shared/infrastructure/database"
)

// sqliteTimeLayout is fixed width so stored timestamps compare correctly
// as strings.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteUserRepository implements domain.UserRepository on SQLite.
type SQLiteUserRepository struct {
	conn database.Connection
}

// NewSQLiteUserRepository creates a SQLite user repository.
func NewSQLiteUserRepository(conn database.Connection) *SQLiteUserRepository {
	return &SQLiteUserRepository{conn: conn}
}

const sqliteSelectUser = `
	SELECT id, email, full_name, password_hash, version, created_at, updated_at
	FROM users
`

// Save updates an existing account or inserts a new one. The two steps
// stay separate because a SQLite upsert aborts on the email uniqueness
// constraint before it ever reaches the id conflict target.
func (r *SQLiteUserRepository) Save(ctx context.Context, user *domain.User) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	update := `
		UPDATE users
		SET email = ?, full_name = ?, password_hash = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := exec.Exec(ctx, update,
		user.Email().String(),
		user.FullName().String(),
		user.PasswordHash(),
		sqliteTime(time.Now()),
		user.ID().String(),
		user.Version(),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	insert := `
		INSERT INTO users (id, email, full_name, password_hash, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = exec.Exec(ctx, insert,
		user.ID().String(),
		user.Email().String(),
		user.FullName().String(),
		user.PasswordHash(),
		user.Version(),
		sqliteTime(user.CreatedAt()),
		sqliteTime(user.UpdatedAt()),
	)
	if err != nil && database.IsUniqueViolation(err) {
		// A row with our id means the aggregate is stale; otherwise
		// another account holds the email.
		if _, findErr := r.FindByID(ctx, user.ID()); findErr == nil {
			return ErrOptimisticLocking
		}
		return domain.ErrEmailTaken
	}

	return err
}

// FindByID retrieves a user by their ID.
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := sqliteSelectUser + `WHERE id = ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.queryUser(ctx, exec, query, id.String())
}

// FindByEmail retrieves a user by their email address.
func (r *SQLiteUserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	query := sqliteSelectUser + `WHERE email = ?`

	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.queryUser(ctx, exec, query, email.String())
}

func (r *SQLiteUserRepository) queryUser(ctx context.Context, exec database.Executor, query string, arg any) (*domain.User, error) {
	var (
		row       userRow
		createdAt string
		updatedAt string
	)

	err := exec.QueryRow(ctx, query, arg).Scan(
		&row.ID,
		&row.Email,
		&row.FullName,
		&row.PasswordHash,
		&row.Version,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if row.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if row.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return nil, err
	}

	return rowToUser(row)
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
