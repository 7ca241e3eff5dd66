package database

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
)

var testDialect = Dialect{
	CreateMigrationsTable: "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)",
	InsertMigration:       "INSERT INTO schema_migrations (version) VALUES (?)",
}

func TestSplitStatements(t *testing.T) {
	content := `-- create the table
CREATE TABLE a (id INT);

-- and an index
CREATE INDEX idx_a ON a (id);
`
	got := SplitStatements(content)
	want := []string{"CREATE TABLE a (id INT)", "CREATE INDEX idx_a ON a (id)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitStatements() = %q, want %q", got, want)
	}
}

func TestMigrate_AppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	fsys := fstest.MapFS{
		"002_index.sql": {Data: []byte("CREATE INDEX idx ON t (id);")},
		"001_init.sql":  {Data: []byte("CREATE TABLE t (id INT);")},
		"003_more.sql":  {Data: []byte("ALTER TABLE t ADD c INT; ALTER TABLE t ADD d INT;")},
		"README.md":     {Data: []byte("ignored")},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("001_init.sql"))

	mock.ExpectBegin()
	mock.ExpectExec("CREATE INDEX idx ON t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("002_index.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("ALTER TABLE t ADD c INT").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE t ADD d INT").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("003_more.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := Migrate(context.Background(), db, fsys, testDialect)
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if want := []string{"002_index.sql", "003_more.sql"}; !reflect.DeepEqual(applied, want) {
		t.Errorf("applied = %v, want %v", applied, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMigrate_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	fsys := fstest.MapFS{"001_init.sql": {Data: []byte("CREATE TABLE t (id INT);")}}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_migrations").WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE t").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	applied, err := Migrate(context.Background(), db, fsys, testDialect)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(applied) != 0 {
		t.Errorf("expected nothing applied, got %v", applied)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMigrate_NothingPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	fsys := fstest.MapFS{"001_init.sql": {Data: []byte("CREATE TABLE t (id INT);")}}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("001_init.sql"))

	applied, err := Migrate(context.Background(), db, fsys, testDialect)
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected nothing applied, got %v", applied)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
