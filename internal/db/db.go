// Package db keeps the activity journal and, with storage: sqlite, the task
// list in a SQLite file inside the data directory.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dori/nightlist/internal/logging"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// FileName is the database file name inside the data directory
const FileName = "nightlist.db"

//go:embed migrations/*.sql
var migrations embed.FS

// DB is the nightlist database. The embedded *sql.DB is closed with Close.
type DB struct {
	*sql.DB
	path string
	log  zerolog.Logger
}

// Open opens nightlist.db in dataDir, creating both if needed, and brings
// the schema up to date.
func Open(dataDir string, log zerolog.Logger) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(dataDir, FileName)

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
		log:  logging.Component(log, "db"),
	}

	if err := db.migrate(context.Background()); err != nil {
		sqlDB.Close()
		return nil, err
	}

	// goose holds its own connection while migrating, so the single
	// writer limit goes on afterwards
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return db, nil
}

func (db *DB) provider() (*goose.Provider, error) {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(goose.DialectSQLite3, db.DB, fsys)
}

// migrate applies pending migrations and logs each one
func (db *DB) migrate(ctx context.Context) error {
	p, err := db.provider()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		db.log.Info().
			Int64("version", r.Source.Version).
			Dur("took", r.Duration).
			Msg("migration applied")
	}
	return nil
}

// SchemaVersion returns the latest applied migration
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	p, err := db.provider()
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Transaction runs fn in a transaction, rolling back if it fails
func (db *DB) Transaction(fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
