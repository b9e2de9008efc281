// Package testdb spins up a migrated, in-memory SQLite database for
// tests that need a real database/sql handle — the event store and
// projection runtime are exercised against their actual SQL, not a
// fake, since their correctness hinges on the schema's constraints
// (the (aggregate_id, version) unique index chief among them).
package testdb

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/imkitchen/imkitchen/internal/migrations"
	"github.com/imkitchen/imkitchen/internal/store"
)

// Open returns a fresh, migrated in-memory SQLite handle, wrapped the
// same way internal/store.Open wraps a production handle, so tests
// exercise the same rebind path production queries go through. Each
// call gets its own isolated database (a unique cache name), closed
// automatically via t.Cleanup.
func Open(t *testing.T) *store.DB {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("testdb: open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Up(db, migrations.BackendSQLite); err != nil {
		t.Fatalf("testdb: migrate: %v", err)
	}
	return store.NewDB(db, store.DialectSQLite)
}
