// Package database abstracts the storage backends. Repositories are
// written once against Executor and run unchanged on PostgreSQL (server
// mode) or SQLite (local mode).
package database

import "strings"

// Driver identifies a database backend.
type Driver string

const (
	// DriverPostgres is the PostgreSQL backend.
	DriverPostgres Driver = "postgres"
	// DriverSQLite is the embedded SQLite backend.
	DriverSQLite Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// IsValid reports whether the driver is a known backend.
func (d Driver) IsValid() bool {
	switch d {
	case DriverPostgres, DriverSQLite:
		return true
	default:
		return false
	}
}

// DetectDriver infers the backend from a connection string. An empty
// URL selects SQLite so a fresh install works with zero configuration.
func DetectDriver(url string) Driver {
	if url == "" {
		return DriverSQLite
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}

	if strings.HasPrefix(url, "sqlite://") ||
		strings.HasPrefix(url, "file:") ||
		strings.HasSuffix(url, ".db") ||
		strings.HasSuffix(url, ".sqlite") ||
		strings.HasSuffix(url, ".sqlite3") {
		return DriverSQLite
	}

	return DriverPostgres
}
