package testdb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/passgate/passgate/internal/db"
	"github.com/passgate/passgate/internal/db/migrate"
	"github.com/passgate/passgate/migrations"
)

// RunWhile runs a database while the provided test is executing.
// It returns an empty database with all migrations applied.
func RunWhile(t *testing.T, driver string) *sql.DB {
	t.Helper()

	sqlDB := RunUnmigratedWhile(t, driver)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := migrate.RunFS(ctx, sqlDB, migrations.FS, migrate.Metadata{})
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return sqlDB
}

// RunUnmigratedWhile runs a database while the provided test is executing.
// It returns an empty database without any migrations applied.
//
// The database lives in memory, so the pool is limited to a single
// connection. Every new connection would see a different database.
func RunUnmigratedWhile(t *testing.T, driver string) *sql.DB {
	t.Helper()

	sqlDB, err := db.OpenSQLite(driver, ":memory:", true)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		err := sqlDB.Close()
		if err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	return sqlDB
}
