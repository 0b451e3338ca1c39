package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file" // File source driver
)

// MigrateUp applies all pending up migrations. Returns nil when there are no
// pending migrations.
//
// IMPORTANT: the migrator takes ownership of the connection and closes it
// when complete. Open a fresh connection for queries afterwards.
//
// Example:
//
//	err := db.MigrateUp(conn, "file://db/migrations")
func MigrateUp(conn *sql.DB, migrationsPath string) error {
	m, err := newMigrator(conn, migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateUpFromPath applies all pending migrations using a database path,
// managing its own connection lifecycle. This is the recommended entry
// point at startup.
func MigrateUpFromPath(dbPath, migrationsPath string) error {
	conn, err := NewSQLiteConnectionWithDefaults(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// No defer: MigrateUp closes the connection via the migrator.
	return MigrateUp(conn, migrationsPath)
}

// MigrationVersion returns the current migration version and dirty state.
// Returns version=0, dirty=false when no migrations have been applied. A
// dirty state means a migration failed partway and needs manual repair.
//
// Takes ownership of the connection like MigrateUp.
func MigrationVersion(conn *sql.DB, migrationsPath string) (uint, bool, error) {
	m, err := newMigrator(conn, migrationsPath)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// newMigrator creates a migrate.Migrate instance for the connection. The
// returned migrator owns the connection; its Close also closes the database.
func newMigrator(conn *sql.DB, migrationsPath string) (*migrate.Migrate, error) {
	if conn == nil {
		return nil, errors.New("database connection is required")
	}
	if migrationsPath == "" {
		return nil, errors.New("migrations path is required")
	}

	driver, err := sqlite.WithInstance(conn, &sqlite.Config{DatabaseName: "main"})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
