package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/amirk1998/notes-vault/pkg/validator"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

type Config struct {
	// Storage configuration
	StorageBackend  string
	StorageName     string
	DBPath          string
	DBEncryptionKey string
	DataDir         string

	// Persistence throttling
	PersistWritesPerSecond float64
	PersistBurst           int

	// Editor
	EditDebounce time.Duration

	// Backup configuration
	BackupDir           string
	BackupPassphrase    string
	BackupInterval      time.Duration
	BackupRetentionDays int

	// Activity log configuration
	ActivityLogPath   string
	ActivityAsyncMode bool

	ExportDir string

	// Application settings
	Environment string
	LogLevel    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (not required in production)
	godotenv.Load()

	config := FromEnv()

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FromEnv reads the environment without loading .env or validating.
func FromEnv() *Config {
	return &Config{
		StorageBackend:         getEnv("STORAGE_BACKEND", BackendSQLite),
		StorageName:            getEnv("STORAGE_NAME", "notes-storage"),
		DBPath:                 getEnv("DB_PATH", "./data/notes.db"),
		DBEncryptionKey:        getEnv("DB_ENCRYPTION_KEY", ""),
		DataDir:                getEnv("DATA_DIR", "./data"),
		PersistWritesPerSecond: getEnvAsFloat("PERSIST_WRITES_PER_SECOND", 2),
		PersistBurst:           getEnvAsInt("PERSIST_BURST", 1),
		EditDebounce:           getEnvAsDuration("EDIT_DEBOUNCE", 500*time.Millisecond),
		BackupDir:              getEnv("BACKUP_DIR", "./backups"),
		BackupPassphrase:       getEnv("BACKUP_PASSPHRASE", ""),
		BackupInterval:         time.Duration(getEnvAsInt("BACKUP_INTERVAL_HOURS", 24)) * time.Hour,
		BackupRetentionDays:    getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		ActivityLogPath:        getEnv("ACTIVITY_LOG_PATH", "./logs/activity.log"),
		ActivityAsyncMode:      getEnvAsBool("ACTIVITY_ASYNC_MODE", true),
		ExportDir:              getEnv("EXPORT_DIR", "./export"),
		Environment:            getEnv("APP_ENV", "development"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
	}
}

// BackupsEnabled reports whether a backup passphrase is configured.
func (c *Config) BackupsEnabled() bool {
	return c.BackupPassphrase != ""
}

// SnapshotFile is the JSON file used by the file backend.
func (c *Config) SnapshotFile() string {
	return filepath.Join(c.DataDir, c.StorageName+".json")
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite:
		if c.DBEncryptionKey == "" {
			return fmt.Errorf("DB_ENCRYPTION_KEY is required")
		}
		if len(c.DBEncryptionKey) < 32 {
			return fmt.Errorf("DB_ENCRYPTION_KEY must be at least 32 characters")
		}
	case BackendFile:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q", BackendSQLite, BackendFile)
	}

	if c.StorageName == "" {
		return fmt.Errorf("STORAGE_NAME is required")
	}

	if c.BackupsEnabled() {
		if err := validator.New().ValidatePassphrase(c.BackupPassphrase); err != nil {
			return fmt.Errorf("BACKUP_PASSPHRASE: %w", err)
		}
		if c.BackupInterval <= 0 {
			return fmt.Errorf("BACKUP_INTERVAL_HOURS must be positive")
		}
	}

	if c.PersistWritesPerSecond <= 0 {
		return fmt.Errorf("PERSIST_WRITES_PER_SECOND must be positive")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
