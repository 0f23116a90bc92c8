package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mutecomm/go-sqlcipher/v4"

	apperrors "github.com/amirk1998/notes-vault/pkg/errors"
)

type Config struct {
	Path          string
	EncryptionKey string
	MaxOpenConns  int
	MaxIdleConns  int
	MaxLifetime   time.Duration
	MaxIdleTime   time.Duration
}

// Connect opens the SQLCipher database at cfg.Path, creating its directory
// with owner-only permissions.
func Connect(cfg Config) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
		return nil, fmt.Errorf("%w: failed to create data directory: %v", apperrors.ErrDatabaseConnection, err)
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma_key=%s&_pragma_cipher_page_size=4096&_pragma_kdf_iter=256000&_journal_mode=WAL&_busy_timeout=5000",
		cfg.Path,
		url.QueryEscape(cfg.EncryptionKey),
	)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", apperrors.ErrDatabaseConnection, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)
	db.SetConnMaxIdleTime(cfg.MaxIdleTime)

	// Ping fails here when the key does not match an existing file.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to verify database connection: %v", apperrors.ErrDatabaseConnection, err)
	}

	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to configure database: %v", apperrors.ErrDatabaseConnection, err)
	}

	if err := os.Chmod(cfg.Path, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set file permissions: %w", err)
	}

	return db, nil
}

func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA secure_delete = ON",
		"PRAGMA synchronous = FULL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA journal_mode = WAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}
