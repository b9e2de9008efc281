/*
 * ImKitchen - Self-Hosted Meal Planning Application
 * Copyright (C) 2025 RGH Software
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published
 * by the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package migrations embeds and runs the numbered SQL migrations for
// both supported backends via golang-migrate, one source tree per
// backend.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/sqlite/*.sql
var sqliteFS embed.FS

//go:embed sql/postgres/*.sql
var postgresFS embed.FS

// Backend selects which embedded migration tree and golang-migrate
// database driver to use.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Up applies every pending migration for backend against db.
func Up(db *sql.DB, backend Backend) error {
	var (
		sub    fs.FS
		err    error
		driver database.Driver
	)

	switch backend {
	case BackendSQLite:
		sub, err = fs.Sub(sqliteFS, "sql/sqlite")
		if err != nil {
			return fmt.Errorf("migrations: sqlite subtree: %w", err)
		}
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case BackendPostgres:
		sub, err = fs.Sub(postgresFS, "sql/postgres")
		if err != nil {
			return fmt.Errorf("migrations: postgres subtree: %w", err)
		}
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return fmt.Errorf("migrations: unknown backend %q", backend)
	}
	if err != nil {
		return fmt.Errorf("migrations: driver instance: %w", err)
	}

	src, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("migrations: source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(backend), driver)
	if err != nil {
		return fmt.Errorf("migrations: init: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}
