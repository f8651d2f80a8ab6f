package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/identity/domain"
	"github.com/edusense/edusense/internal/shared/infrastructure/database"
)

// ErrOptimisticLocking is returned when a save races a concurrent update
// of the same account.
var ErrOptimisticLocking = errors.New("optimistic locking conflict")

// PostgresUserRepository implements domain.UserRepository on PostgreSQL.
type PostgresUserRepository struct {
	conn database.Connection
}

// NewPostgresUserRepository creates a PostgreSQL user repository.
func NewPostgresUserRepository(conn database.Connection) *PostgresUserRepository {
	return &PostgresUserRepository{conn: conn}
}

type userRow struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const pgSelectUser = `
	SELECT id, email, full_name, password_hash, version, created_at, updated_at
	FROM users
`

// Save upserts a user with a version guard. A raced insert against the
// email unique index maps to domain.ErrEmailTaken so the pre-check in
// the registration flow cannot be bypassed by concurrent requests.
func (r *PostgresUserRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, full_name, password_hash, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			password_hash = EXCLUDED.password_hash,
			version = users.version + 1,
			updated_at = NOW()
		WHERE users.version = $5
		RETURNING version
	`

	var newVersion int
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx, query,
		user.ID(),
		user.Email().String(),
		user.FullName().String(),
		user.PasswordHash(),
		user.Version(),
		user.CreatedAt(),
		user.UpdatedAt(),
	).Scan(&newVersion)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		if database.IsNoRows(err) {
			return ErrOptimisticLocking
		}
		return err
	}

	return nil
}

// FindByID retrieves a user by their ID.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := pgSelectUser + `WHERE id = $1`

	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.queryUser(ctx, exec, query, id)
}

// FindByEmail retrieves a user by their email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	query := pgSelectUser + `WHERE email = $1`

	exec := database.ExecutorFromContext(ctx, r.conn)
	return r.queryUser(ctx, exec, query, email.String())
}

func (r *PostgresUserRepository) queryUser(ctx context.Context, exec database.Executor, query string, arg any) (*domain.User, error) {
	var row userRow
	err := exec.QueryRow(ctx, query, arg).Scan(
		&row.ID,
		&row.Email,
		&row.FullName,
		&row.PasswordHash,
		&row.Version,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return rowToUser(row)
}

func rowToUser(row userRow) (*domain.User, error) {
	email, err := domain.NewEmail(row.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid email in database: %w", err)
	}

	fullName, err := domain.NewName(row.FullName)
	if err != nil {
		return nil, fmt.Errorf("invalid name in database: %w", err)
	}

	return domain.RehydrateUser(domain.UserSnapshot{
		ID:           row.ID,
		Email:        email,
		FullName:     fullName,
		PasswordHash: row.PasswordHash,
		Version:      row.Version,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}), nil
}
