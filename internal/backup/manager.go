package backup

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/amirk1998/notes-vault/internal/security"
	"github.com/amirk1998/notes-vault/pkg/errors"
)

const (
	filePrefix = "backup_"
	fileSuffix = ".json.gz.enc"
	sumSuffix  = ".sha256"
)

// Source produces the snapshot document to back up.
type Source func() ([]byte, error)

type Manager struct {
	backupDir     string
	sealer        *security.Sealer
	retentionDays int
	now           func() time.Time
	log           zerolog.Logger
}

// NewManager creates a new backup manager
func NewManager(backupDir string, passphrase string, retentionDays int, log zerolog.Logger) (*Manager, error) {
	sealer, err := security.NewSealer(passphrase)
	if err != nil {
		return nil, err
	}

	// Ensure backup directory exists with secure permissions
	if err := os.MkdirAll(backupDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	return &Manager{
		backupDir:     backupDir,
		sealer:        sealer,
		retentionDays: retentionDays,
		now:           time.Now,
		log:           log.With().Str("component", "backup").Logger(),
	}, nil
}

// CreateBackup compresses and encrypts doc into a new backup file and
// writes its checksum next to it.
func (m *Manager) CreateBackup(doc []byte) (string, error) {
	timestamp := m.now().UTC().Format("20060102_150405.000000000")
	backupPath := filepath.Join(m.backupDir, filePrefix+timestamp+fileSuffix)

	var compressed bytes.Buffer
	gzWriter := gzip.NewWriter(&compressed)
	if _, err := gzWriter.Write(doc); err != nil {
		return "", fmt.Errorf("%w: failed to compress: %v", errors.ErrBackupFailed, err)
	}
	if err := gzWriter.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to compress: %v", errors.ErrBackupFailed, err)
	}

	sealed, err := m.sealer.Seal(compressed.Bytes())
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrBackupFailed, err)
	}

	if err := os.WriteFile(backupPath, sealed, 0600); err != nil {
		return "", fmt.Errorf("%w: failed to write backup: %v", errors.ErrBackupFailed, err)
	}

	if err := m.createChecksumFile(backupPath, sealed); err != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("%w: failed to create checksum: %v", errors.ErrBackupFailed, err)
	}

	m.log.Info().Str("path", backupPath).Int("bytes", len(sealed)).Msg("backup created")
	return backupPath, nil
}

func (m *Manager) createChecksumFile(filePath string, data []byte) error {
	hash := sha256.Sum256(data)
	return os.WriteFile(filePath+sumSuffix, []byte(fmt.Sprintf("%x", hash)), 0600)
}

// VerifyBackup verifies backup integrity
func (m *Manager) VerifyBackup(backupPath string) error {
	storedChecksum, err := os.ReadFile(backupPath + sumSuffix)
	if err != nil {
		return fmt.Errorf("failed to read checksum file: %w", err)
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	hash := sha256.Sum256(data)
	if fmt.Sprintf("%x", hash) != strings.TrimSpace(string(storedChecksum)) {
		return fmt.Errorf("%w: backup file may be corrupted", errors.ErrChecksumMismatch)
	}

	return nil
}

// RestoreBackup verifies, decrypts and decompresses a backup and returns the
// snapshot document it holds.
func (m *Manager) RestoreBackup(backupPath string) ([]byte, error) {
	if err := m.VerifyBackup(backupPath); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrRestoreFailed, err)
	}

	sealed, err := os.ReadFile(backupPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrRestoreFailed, err)
	}

	compressed, err := m.sealer.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrRestoreFailed, err)
	}

	gzReader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress: %v", errors.ErrRestoreFailed, err)
	}
	defer gzReader.Close()

	doc, err := io.ReadAll(gzReader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress: %v", errors.ErrRestoreFailed, err)
	}

	m.log.Info().Str("path", backupPath).Msg("backup restored")
	return doc, nil
}

// ListBackups returns the backup files, newest first.
func (m *Manager) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(m.backupDir, name))
	}

	// Timestamps in the names sort lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// CleanOldBackups removes old backups based on retention policy
func (m *Manager) CleanOldBackups() error {
	cutoffTime := m.now().AddDate(0, 0, -m.retentionDays)

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	deletedCount := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			filePath := filepath.Join(m.backupDir, entry.Name())
			if err := os.Remove(filePath); err != nil {
				m.log.Warn().Err(err).Str("path", filePath).Msg("failed to delete old backup")
				continue
			}
			deletedCount++
		}
	}

	if deletedCount > 0 {
		m.log.Info().Int("count", deletedCount).Msg("cleaned old backup files")
	}

	return nil
}

// StartAutomatedBackups backs up source every interval until ctx is done
func (m *Manager) StartAutomatedBackups(ctx context.Context, interval time.Duration, source Source) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.log.Info().Dur("interval", interval).Msg("automated backups started")

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("stopping automated backups")
			return
		case <-ticker.C:
			doc, err := source()
			if err != nil {
				m.log.Error().Err(err).Msg("scheduled backup skipped")
				continue
			}
			if _, err := m.CreateBackup(doc); err != nil {
				m.log.Error().Err(err).Msg("scheduled backup failed")
			}

			if err := m.CleanOldBackups(); err != nil {
				m.log.Error().Err(err).Msg("backup cleanup failed")
			}
		}
	}
}
