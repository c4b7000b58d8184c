package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dori/nightlist/internal/config"
	"github.com/dori/nightlist/internal/db"
	"github.com/dori/nightlist/internal/logging"
	"github.com/dori/nightlist/internal/notify"
	"github.com/dori/nightlist/internal/store"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// ErrAlreadyRunning is returned when another process holds the data directory lock
var ErrAlreadyRunning = errors.New("another instance of nightlist is already running")

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	Store    *store.Store
	Notifier *notify.Notifier
	Log      zerolog.Logger
	DataDir  string

	// DB backs the journal and, with storage: sqlite, the task list.
	// Nil when neither is enabled or the journal could not be opened.
	DB *db.DB

	// LoadErr is the error from the initial load, if any. The store is
	// empty when it is set.
	LoadErr error

	lockFile *flock.Flock
	logFile  io.Closer
}

// New creates a new application instance and loads the task list
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = config.DataDir()
	}

	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config:   cfg,
		DataDir:  dataDir,
		Notifier: notify.NewNotifier(),
		Log:      zerolog.Nop(),
	}
	app.Notifier.SetEnabled(cfg.Notifications)

	logger, logFile, err := logging.OpenFile(filepath.Join(dataDir, logging.FileName), logging.Level(cfg.LogLevel))
	if err != nil {
		return nil, err
	}
	app.Log = logging.Component(logger, "app")
	app.logFile = logFile

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		app.closeLog()
		return nil, err
	}

	backend, err := app.openStorage(logger)
	if err != nil {
		app.releaseLock()
		app.closeLog()
		return nil, err
	}

	app.Store = store.New(backend)
	app.Store.SetLogger(logger)
	if cfg.Journal && app.DB != nil {
		app.Store.SetJournal(app.DB)
	}

	if err := app.Store.Load(); err != nil {
		app.LoadErr = err
		app.Notifier.SendLoadFailed(store.IsCorrupt(err))
	}

	app.Log.Info().
		Str("location", app.Store.Location()).
		Int("tasks", app.Store.Len()).
		Bool("journal", cfg.Journal && app.DB != nil).
		Bool("notifications", app.Notifier.IsEnabled()).
		Msg("started")

	return app, nil
}

// openStorage opens the database when needed and returns the task backend
func (a *App) openStorage(logger zerolog.Logger) (store.Backend, error) {
	needDB := a.Config.Storage == config.StorageSQLite || a.Config.Journal
	if needDB {
		database, err := db.Open(a.DataDir, logger)
		switch {
		case err == nil:
			a.DB = database
		case a.Config.Storage == config.StorageSQLite:
			return nil, fmt.Errorf("failed to open database: %w", err)
		default:
			// The journal is optional; run without it
			a.Log.Warn().Err(err).Msg("journal disabled")
		}
	}

	if a.Config.Storage == config.StorageSQLite {
		return db.NewTaskBackend(a.DB), nil
	}
	return store.NewFileBackend(a.Config.TasksPath(a.DataDir)), nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "nightlist.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return ErrAlreadyRunning
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

func (a *App) closeLog() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

// ReportPersist sends a desktop notification for a failed write.
// Errors other than *store.PersistError are ignored.
func (a *App) ReportPersist(err error) {
	var perr *store.PersistError
	if errors.As(err, &perr) {
		a.Notifier.SendSaveFailed(perr.Location)
	}
}

// Close saves the task list one last time and cleans up application resources.
// A failed save is returned but does not stop the rest of the cleanup.
func (a *App) Close() error {
	var errs []error

	// An unreadable file that was never replaced stays on disk for recovery
	keepDamaged := a.LoadErr != nil && a.Store != nil && a.Store.Len() == 0
	if keepDamaged {
		a.Log.Warn().Err(a.LoadErr).Msg("skipping exit save over unreadable task file")
	}

	if a.Store != nil && !keepDamaged {
		if err := a.Store.Persist(); err != nil {
			a.Log.Error().Err(err).Msg("exit save failed")
			errs = append(errs, err)
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()
	a.Log.Info().Msg("stopped")
	a.closeLog()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
