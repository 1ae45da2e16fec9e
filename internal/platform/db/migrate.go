package db

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

func prepareGoose() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(driverName); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// MigrateUp applies every pending migration.
func MigrateUp(conn *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	from, err := goose.GetDBVersion(conn)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	if err := goose.Up(conn, migrationsDir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	to, err := goose.GetDBVersion(conn)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	slog.Info("migration completed", "from_version", from, "to_version", to)
	return nil
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(conn *sql.DB, steps int) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		if err := goose.Down(conn, migrationsDir); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	}
	return nil
}

// MigrationStatus prints the applied/pending state of each migration.
func MigrationStatus(conn *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.Status(conn, migrationsDir)
}
