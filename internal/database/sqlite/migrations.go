package sqlite

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
			version TEXT PRIMARY KEY,
			applied_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	InsertMigration: "INSERT INTO schema_migrations (version) VALUES (?)",
}

// Migrate applies all pending migrations and returns the versions applied.
func (p *Pool) Migrate(ctx context.Context) ([]string, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	return database.Migrate(ctx, p.db, sub, dialect)
}
