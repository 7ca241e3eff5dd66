package mariadb

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
			applied_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		)`,
	InsertMigration: "INSERT INTO schema_migrations (version) VALUES (?)",
}

// Migrate applies all pending migrations and returns the versions applied.
// MySQL commits DDL implicitly, so a failed file may leave partial changes.
func (p *Pool) Migrate(ctx context.Context) ([]string, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	return database.Migrate(ctx, p.db, sub, dialect)
}
