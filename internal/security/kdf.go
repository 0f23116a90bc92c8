package security

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters (OWASP recommendations)
	argon2Time      = 3
	argon2Memory    = 64 * 1024 // 64 MB
	argon2Threads   = 2
	argon2KeyLength = 32
	SaltLength      = 16
)

// DeriveKey stretches passphrase into a 32-byte AES-256 key with Argon2id.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(passphrase),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLength,
	)
}

// NewSalt returns SaltLength random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
