// Package sqlite is the default snapshot backend: a single local database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/kozaktomas/carecam/internal/config"
	"github.com/kozaktomas/carecam/internal/database"
)

// Pool wraps a SQLite database handle.
type Pool struct {
	db *sql.DB
}

// Open opens (creating if needed) the database file at path.
func Open(path string) (*Pool, error) {
	if path == "" {
		return nil, errors.New("sqlite database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return &Pool{db: db}, nil
}

// Close closes the database.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Initialize opens the SQLite backend, applies migrations and registers it
// as the active snapshot store.
func Initialize(cfg *config.DatabaseConfig, log logrus.FieldLogger) error {
	pool, err := Open(cfg.URL)
	if err != nil {
		return err
	}

	applied, err := pool.Migrate(context.Background())
	if err != nil {
		pool.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, v := range applied {
		log.WithField("version", v).Info("applied migration")
	}

	database.RegisterBackend(config.DriverSQLite, NewSnapshotRepository(pool), pool.Close)
	return nil
}
