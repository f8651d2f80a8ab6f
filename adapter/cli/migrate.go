package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edusense/edusense/internal/shared/infrastructure/database"
	_ "github.com/edusense/edusense/internal/shared/infrastructure/database/postgres" // register Postgres driver
	_ "github.com/edusense/edusense/internal/shared/infrastructure/database/sqlite"   // register SQLite driver
	"github.com/edusense/edusense/internal/shared/infrastructure/migrations"
	"github.com/edusense/edusense/pkg/config"
)

// migrateCmd applies pending schema migrations and exits. The server and
// the local CLI also migrate on startup; this command exists for
// deployments that migrate once before rolling out new instances.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		conn, err := database.NewConnection(ctx, database.Config{
			Driver:     database.Driver(cfg.DatabaseDriver),
			URL:        cfg.DatabaseURL,
			SQLitePath: cfg.SQLitePath,
			MaxConns:   cfg.DatabaseMaxConns,
		})
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer conn.Close()

		if err := migrations.Run(ctx, conn); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		fmt.Printf("Migrations applied (%s)\n", conn.Driver())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
