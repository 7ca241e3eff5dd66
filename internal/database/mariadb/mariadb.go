package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/carecam/internal/config"
	"github.com/kozaktomas/carecam/internal/database"
)

// Pool manages a MariaDB connection pool.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new MariaDB connection pool. The DSN is forced to parse
// DATETIME columns into time.Time in UTC.
func NewPool(cfg *config.DatabaseConfig) (*Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	dsn, err := normalizeDSN(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return &Pool{db: db}, nil
}

func normalizeDSN(dsn string) (string, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MariaDB DSN: %w", err)
	}
	parsed.ParseTime = true
	parsed.Loc = time.UTC
	return parsed.FormatDSN(), nil
}

// NewPoolFromDB wraps an already opened database handle.
func NewPoolFromDB(db *sql.DB) *Pool {
	return &Pool{db: db}
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Initialize opens the MariaDB backend, applies migrations and registers it
// as the active snapshot store.
func Initialize(cfg *config.DatabaseConfig, log logrus.FieldLogger) error {
	pool, err := NewPool(cfg)
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

	database.RegisterBackend(config.DriverMariaDB, NewSnapshotRepository(pool), pool.Close)
	return nil
}
