package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/amirk1998/notes-vault/pkg/errors"
)

// SnapshotRepository stores named documents in the kv_store table.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load returns the document stored under name
func (r *SnapshotRepository) Load(ctx context.Context, name string) ([]byte, error) {
	query := `
        SELECT value
        FROM kv_store
        WHERE name = ?
    `

	var value string
	err := r.db.QueryRowContext(ctx, query, name).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, errors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return []byte(value), nil
}

// Save replaces the document stored under name
func (r *SnapshotRepository) Save(ctx context.Context, name string, doc []byte) error {
	query := `
        INSERT INTO kv_store (name, value, revision, updated_at)
        VALUES (?, ?, 1, ?)
        ON CONFLICT(name) DO UPDATE SET
            value = excluded.value,
            revision = kv_store.revision + 1,
            updated_at = excluded.updated_at
    `

	if _, err := r.db.ExecContext(ctx, query, name, string(doc), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Revision returns how many times name has been written
func (r *SnapshotRepository) Revision(ctx context.Context, name string) (int64, error) {
	query := `
        SELECT revision
        FROM kv_store
        WHERE name = ?
    `

	var revision int64
	err := r.db.QueryRowContext(ctx, query, name).Scan(&revision)
	if err == sql.ErrNoRows {
		return 0, errors.ErrRecordNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read revision: %w", err)
	}

	return revision, nil
}

// Delete removes the document stored under name
func (r *SnapshotRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return errors.ErrRecordNotFound
	}

	return nil
}
