package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/amirk1998/notes-vault/pkg/errors"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestConnectCreatesPrivateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "notes.db")

	db, err := Connect(Config{Path: path, EncryptionKey: testKey, MaxOpenConns: 1})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConnectFailureIsConnectionError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := Connect(Config{Path: filepath.Join(blocker, "notes.db"), EncryptionKey: testKey, MaxOpenConns: 1})
	assert.ErrorIs(t, err, apperrors.ErrDatabaseConnection)
}
