package cli

import (
	"database/sql"

	"github.com/spf13/cobra"

	"SIMAPRO-backend/internal/platform/db"
)

var steps int

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}
	down := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  withDB(func(conn *sql.DB) error { return db.MigrateDown(conn, steps) }),
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Run all pending migrations",
			RunE:  withDB(db.MigrateUp),
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE:  withDB(db.MigrationStatus),
		},
	)
	return cmd
}
