package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/amirk1998/notes-vault/internal/audit"
	"github.com/amirk1998/notes-vault/internal/backup"
	"github.com/amirk1998/notes-vault/internal/config"
	"github.com/amirk1998/notes-vault/internal/database"
	"github.com/amirk1998/notes-vault/internal/editor"
	"github.com/amirk1998/notes-vault/internal/logging"
	"github.com/amirk1998/notes-vault/internal/models"
	"github.com/amirk1998/notes-vault/internal/persist"
	"github.com/amirk1998/notes-vault/internal/repository"
	"github.com/amirk1998/notes-vault/internal/store"
	"github.com/amirk1998/notes-vault/pkg/validator"
)

type Application struct {
	config    *config.Config
	log       zerolog.Logger
	db        *sql.DB
	snapshots *repository.SnapshotRepository
	writer    *persist.Writer
	store     *store.Store
	activity  *audit.Logger
	unobserve func()
	backupMgr *backup.Manager
	validator *validator.Validator

	// listed is the last printed note list, so notes can be picked by number.
	listed []models.Note

	// session is the edit in progress; cleanup flushes it before the
	// writer closes.
	sessionMu sync.Mutex
	session   *editor.Session

	cleanupOnce sync.Once
}

func main() {
	fmt.Println("===========================================")
	fmt.Println("  Notes Vault")
	fmt.Println("===========================================")
	fmt.Println()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)

	// Initialize application
	app, err := initializeApplication(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer app.cleanup()

	fmt.Println("[OK] Application initialized successfully")
	if cfg.StorageBackend == config.BackendSQLite {
		fmt.Println("[OK] Snapshot stored in SQLCipher database")
	} else {
		fmt.Printf("[OK] Snapshot stored in %s\n", cfg.SnapshotFile())
	}
	fmt.Println("[OK] Activity logging enabled")
	if app.backupMgr != nil {
		fmt.Println("[OK] Encrypted backups enabled")
	}
	fmt.Println()

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		fmt.Println("\n\n[Shutdown] Received shutdown signal...")
		app.cleanup()
		os.Exit(0)
	}()

	// Start automated backups in background
	if app.backupMgr != nil {
		go app.backupMgr.StartAutomatedBackups(ctx, cfg.BackupInterval, app.snapshot)
	}

	// Run interactive CLI
	app.runCLI(ctx)
}

// initializeApplication sets up all application components
func initializeApplication(cfg *config.Config, logger zerolog.Logger) (*Application, error) {
	app := &Application{
		config:    cfg,
		log:       logger,
		validator: validator.New(),
	}

	var repo persist.Repository
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		// Connect to encrypted database
		db, err := database.Connect(database.Config{
			Path:          cfg.DBPath,
			EncryptionKey: cfg.DBEncryptionKey,
			MaxOpenConns:  4,
			MaxIdleConns:  2,
			MaxLifetime:   1 * time.Hour,
			MaxIdleTime:   10 * time.Minute,
		})
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}

		// Run migrations
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}

		app.db = db
		app.snapshots = repository.NewSnapshotRepository(db)
		repo = app.snapshots
	default:
		fileRepo, err := repository.NewFileRepository(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		repo = fileRepo
	}

	// Initialize activity logger; without a database it only writes the file
	activity, err := audit.NewLogger(app.db, cfg.ActivityLogPath, cfg.ActivityAsyncMode, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize activity logger: %w", err)
	}
	app.activity = activity

	// Initialize backup manager
	if cfg.BackupsEnabled() {
		backupMgr, err := backup.NewManager(cfg.BackupDir, cfg.BackupPassphrase, cfg.BackupRetentionDays, logger)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to initialize backup manager: %w", err)
		}
		app.backupMgr = backupMgr
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	initial := persist.Load(loadCtx, repo, cfg.StorageName, logger)
	cancel()

	app.writer = persist.NewWriter(repo, persist.WriterConfig{
		Name:            cfg.StorageName,
		WritesPerSecond: cfg.PersistWritesPerSecond,
		Burst:           cfg.PersistBurst,
	}, logger)

	app.store = store.New(initial,
		store.WithSaver(app.writer),
		store.WithLogger(logger.With().Str("component", "store").Logger()),
	)
	app.unobserve = app.activity.Observe(app.store)

	return app, nil
}

// snapshot encodes the current state for backups
func (app *Application) snapshot() ([]byte, error) {
	return persist.Encode(app.store.State())
}

// trackSession records sess as the edit in progress, or clears it when nil.
func (app *Application) trackSession(sess *editor.Session) {
	app.sessionMu.Lock()
	app.session = sess
	app.sessionMu.Unlock()
}

// flushSession commits whatever the edit in progress has buffered.
func (app *Application) flushSession() {
	app.sessionMu.Lock()
	sess := app.session
	app.sessionMu.Unlock()

	if sess != nil {
		sess.Flush()
	}
}

// cleanup performs cleanup operations
func (app *Application) cleanup() {
	app.cleanupOnce.Do(func() {
		fmt.Println("\n[Cleanup] Shutting down gracefully...")

		app.flushSession()

		if app.unobserve != nil {
			app.unobserve()
		}

		if app.writer != nil {
			app.writer.Close()
		}

		if app.activity != nil {
			if err := app.activity.Close(); err != nil {
				app.log.Error().Err(err).Msg("failed to close activity log")
			}
		}

		if app.db != nil {
			app.db.Close()
		}

		fmt.Println("[Cleanup] Done")
	})
}
