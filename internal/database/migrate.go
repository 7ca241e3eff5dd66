package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Dialect holds the backend specific statements used by Migrate.
type Dialect struct {
	// CreateMigrationsTable creates the schema_migrations table if missing.
	CreateMigrationsTable string
	// InsertMigration records one applied version; it takes a single argument.
	InsertMigration string
}

// Migrate applies every .sql file in migrations that is not yet recorded in
// schema_migrations, in name order, each inside its own transaction.
// Files may hold several statements separated by semicolons.
// It returns the versions applied by this call.
func Migrate(ctx context.Context, db *sql.DB, migrations fs.FS, d Dialect) ([]string, error) {
	if _, err := db.ExecContext(ctx, d.CreateMigrationsTable); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") && !applied[e.Name()] {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var done []string
	for _, file := range files {
		content, err := fs.ReadFile(migrations, file)
		if err != nil {
			return done, fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return done, fmt.Errorf("begin transaction for %s: %w", file, err)
		}

		for _, stmt := range SplitStatements(string(content)) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return done, fmt.Errorf("execute migration %s: %w", file, err)
			}
		}

		if _, err := tx.ExecContext(ctx, d.InsertMigration, file); err != nil {
			tx.Rollback()
			return done, fmt.Errorf("record migration %s: %w", file, err)
		}

		if err := tx.Commit(); err != nil {
			return done, fmt.Errorf("commit migration %s: %w", file, err)
		}
		done = append(done, file)
	}

	return done, nil
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM "+MigrationsTable)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return applied, nil
}

// SplitStatements splits a migration file on semicolons, dropping blank
// statements and full-line "--" comments.
func SplitStatements(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(lines, "\n"), ";") {
		if s := strings.TrimSpace(part); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
