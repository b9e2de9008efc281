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
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/imkitchen/imkitchen/internal/config"
)

// OpenSQLite opens the single-file database at cfg.SQLitePath and
// returns the same db for both the write and read handle — a sqlite3
// file is single-writer by construction, so there is no separate pool
// to split unlike OpenPostgres. SetMaxOpenConns(1) on the shared handle
// keeps that guarantee when the driver is used from multiple goroutines.
func OpenSQLite(ctx context.Context, cfg config.DatabaseConfig) (write, read *sql.DB, err error) {
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("store: create sqlite directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", cfg.SQLitePath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("store: open sqlite %s: %w", cfg.SQLitePath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("store: ping sqlite: %w", err)
	}

	return db, db, nil
}
