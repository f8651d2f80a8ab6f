// Package migrations applies the embedded schema for whichever driver the
// connection uses. Files are plain SQL ordered by numeric prefix and written
// to be idempotent, so startup can run them unconditionally.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/edusense/edusense/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationFS embed.FS

// Run executes all up migrations for the connection's driver, in order.
func Run(ctx context.Context, conn database.Connection) error {
	dir := conn.Driver().String()

	files, err := upFiles(dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		migration, err := migrationFS.ReadFile(dir + "/" + file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if err := execute(ctx, conn, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}

	return nil
}

func upFiles(dir string) ([]string, error) {
	entries, err := migrationFS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	return files, nil
}

// execute runs a single migration file. PostgreSQL uses the extended query
// protocol, which accepts one statement per Exec, so files are split on
// statement boundaries first. SQLite executes the whole file in one call.
func execute(ctx context.Context, conn database.Connection, migration string) error {
	if conn.Driver() != database.DriverPostgres {
		_, err := conn.Exec(ctx, migration)
		return err
	}

	for _, stmt := range splitStatements(migration) {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// splitStatements breaks a migration file into statements. The schema files
// hold only DDL with no semicolons inside string literals, so splitting on
// ';' is enough.
func splitStatements(migration string) []string {
	var stmts []string
	for _, raw := range strings.Split(migration, ";") {
		if stmt := strings.TrimSpace(raw); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}

	return stmts
}
