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

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/imkitchen/imkitchen/internal/config"
	"github.com/imkitchen/imkitchen/internal/migrations"
)

// Open dispatches to OpenPostgres or OpenSQLite per cfg.Type, applies
// every pending migration against the raw write handle, then wraps
// both handles in DB so every query issued against them — across
// internal/eventstore, internal/projection, internal/query, and
// internal/command — is rebound to the chosen dialect's placeholder
// syntax before it reaches the driver. main.go never sees an
// unmigrated database or a bare *sql.DB.
func Open(ctx context.Context, cfg config.DatabaseConfig) (write, read *DB, backend migrations.Backend, err error) {
	var rawWrite, rawRead *sql.DB
	var dialect Dialect

	switch cfg.Type {
	case "postgres":
		rawWrite, rawRead, err = OpenPostgres(ctx, cfg)
		backend = migrations.BackendPostgres
		dialect = DialectPostgres
	case "sqlite", "":
		rawWrite, rawRead, err = OpenSQLite(ctx, cfg)
		backend = migrations.BackendSQLite
		dialect = DialectSQLite
	default:
		return nil, nil, "", fmt.Errorf("store: unknown database type %q", cfg.Type)
	}
	if err != nil {
		return nil, nil, "", err
	}

	if err := migrations.Up(rawWrite, backend); err != nil {
		rawWrite.Close()
		if rawRead != rawWrite {
			rawRead.Close()
		}
		return nil, nil, "", fmt.Errorf("store: run migrations: %w", err)
	}

	write = NewDB(rawWrite, dialect)
	read = write
	if rawRead != rawWrite {
		read = NewDB(rawRead, dialect)
	}
	return write, read, backend, nil
}
