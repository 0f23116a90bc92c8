package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlcipher"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	apperrors "github.com/amirk1998/notes-vault/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate brings the schema up to date. The migrate instance is not closed:
// closing it would close db.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("%w: failed to read migrations: %v", apperrors.ErrMigrationFailed, err)
	}

	driver, err := sqlcipher.WithInstance(db, &sqlcipher.Config{})
	if err != nil {
		return fmt.Errorf("%w: failed to create migration driver: %v", apperrors.ErrMigrationFailed, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlcipher", driver)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMigrationFailed, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: %v", apperrors.ErrMigrationFailed, err)
	}

	return nil
}
