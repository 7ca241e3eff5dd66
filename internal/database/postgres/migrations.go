package postgres

import (
	"context"
	"embed"
	"io/fs"

	"github.com/kozaktomas/carecam/internal/database"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var dialect = database.Dialect{
	CreateMigrationsTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`,
	InsertMigration: "INSERT INTO schema_migrations (version) VALUES ($1)",
}

// Migrate applies all pending migrations and returns the versions applied.
func (p *Pool) Migrate(ctx context.Context) ([]string, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	return database.Migrate(ctx, p.db, sub, dialect)
}

// MigrationsApplied returns the list of applied migrations
func (p *Pool) MigrationsApplied(ctx context.Context) ([]string, error) {
	rows, err := p.Query(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
