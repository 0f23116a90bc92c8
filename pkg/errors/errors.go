package errors

import (
	"errors"
	"fmt"
)

// Custom error types for better error handling
var (
	// Validation errors
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidFolderName = errors.New("invalid folder name")
	ErrInvalidTag        = errors.New("invalid tag")

	// Storage errors
	ErrDatabaseConnection = errors.New("database connection failed")
	ErrMigrationFailed    = errors.New("migration failed")
	ErrRecordNotFound     = errors.New("record not found")

	// Encryption errors
	ErrEncryptionFailed = errors.New("encryption failed")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrInvalidKey       = errors.New("invalid encryption key")

	// Backup errors
	ErrBackupFailed       = errors.New("backup operation failed")
	ErrRestoreFailed      = errors.New("restore operation failed")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrExportFailed       = errors.New("export failed")
	ErrInvalidFrontmatter = errors.New("invalid frontmatter format")
)

// AppError wraps errors with additional context
type AppError struct {
	Err     error
	Message string
	Code    int
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error
func NewAppError(err error, message string, code int) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}
