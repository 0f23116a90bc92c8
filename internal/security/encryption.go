package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/amirk1998/notes-vault/pkg/errors"
)

// Sealer encrypts blobs with AES-256-GCM under a key derived from a
// passphrase. Each sealed blob is salt || nonce || ciphertext, so it can be
// opened with the passphrase alone.
type Sealer struct {
	passphrase string
}

func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: empty passphrase", errors.ErrInvalidKey)
	}
	return &Sealer{passphrase: passphrase}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Seal encrypts plaintext with a fresh salt and nonce
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	salt, err := NewSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrEncryptionFailed, err)
	}

	gcm, err := newGCM(DeriveKey(s.passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrEncryptionFailed, err)
	}

	// Generate nonce (number used once)
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: failed to generate nonce: %v", errors.ErrEncryptionFailed, err)
	}

	out := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts a blob produced by Seal
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < SaltLength {
		return nil, fmt.Errorf("%w: ciphertext too short", errors.ErrDecryptionFailed)
	}
	salt, rest := sealed[:SaltLength], sealed[SaltLength:]

	gcm, err := newGCM(DeriveKey(s.passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDecryptionFailed, err)
	}

	nonceSize := gcm.NonceSize()
	if len(rest) < nonceSize {
		return nil, fmt.Errorf("%w: ciphertext too short", errors.ErrDecryptionFailed)
	}
	nonce, encryptedData := rest[:nonceSize], rest[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, encryptedData, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDecryptionFailed, err)
	}

	return plaintext, nil
}
