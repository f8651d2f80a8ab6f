package app

import (
	"github.com/edusense/edusense/internal/coursework/domain/task"
	courseworkPersistence "github.com/edusense/edusense/internal/coursework/infrastructure/persistence"
	identityDomain "github.com/edusense/edusense/internal/identity/domain"
	identityPersistence "github.com/edusense/edusense/internal/identity/infrastructure/persistence"
	"github.com/edusense/edusense/internal/shared/infrastructure/database"
	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
	studyplanDomain "github.com/edusense/edusense/internal/studyplan/domain"
	studyplanPersistence "github.com/edusense/edusense/internal/studyplan/infrastructure/persistence"
)

// RepositoryFactory creates repositories for the connection's driver.
// Every repository works through database.Connection, so the factory
// only picks the SQL dialect; callers never branch on the backend.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// Driver returns the driver the factory builds repositories for.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}

// UserRepository creates a user repository for the configured driver.
func (f *RepositoryFactory) UserRepository() identityDomain.UserRepository {
	if f.driver == database.DriverSQLite {
		return identityPersistence.NewSQLiteUserRepository(f.conn)
	}
	return identityPersistence.NewPostgresUserRepository(f.conn)
}

// TaskRepository creates a task repository for the configured driver.
func (f *RepositoryFactory) TaskRepository() task.Repository {
	if f.driver == database.DriverSQLite {
		return courseworkPersistence.NewSQLiteTaskRepository(f.conn)
	}
	return courseworkPersistence.NewPostgresTaskRepository(f.conn)
}

// ScheduleRepository creates a study schedule repository for the
// configured driver.
func (f *RepositoryFactory) ScheduleRepository() studyplanDomain.Repository {
	if f.driver == database.DriverSQLite {
		return studyplanPersistence.NewSQLiteScheduleRepository(f.conn)
	}
	return studyplanPersistence.NewPostgresScheduleRepository(f.conn)
}

// OutboxRepository creates an outbox repository for the configured driver.
func (f *RepositoryFactory) OutboxRepository() outbox.Repository {
	if f.driver == database.DriverSQLite {
		return outbox.NewSQLiteRepository(f.conn)
	}
	return outbox.NewPostgresRepository(f.conn)
}
