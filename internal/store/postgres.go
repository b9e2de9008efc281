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

// Package store opens the write/read database handle pair
// internal/eventstore and internal/projection run against, for both
// supported backends, and wraps each raw *sql.DB in DB (rebind.go) so
// every `?`-authored query issued against it lands in the placeholder
// syntax its backend actually accepts.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/imkitchen/imkitchen/internal/config"
)

// OpenPostgres builds the raw write/read *sql.DB pair: a single-connection write pool so per-aggregate appends
// serialize through the (aggregate_id, version) unique index, and a
// separate, normally-sized read pool for everything else. Both
// connections are parsed from the same DSN and stamped onto
// database/sql via pgx's stdlib driver. pgx's stdlib binding speaks
// Postgres's native `$N` placeholders and rejects `?` outright, so callers must not
// query these handles directly — Open wraps both in a dialect-aware
// DB (rebind.go) before anything outside this package sees them.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (write, read *sql.DB, err error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	writeCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("store: parse postgres dsn: %w", err)
	}
	write = stdlib.OpenDB(*writeCfg)
	write.SetMaxOpenConns(1)

	readCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("store: parse postgres dsn: %w", err)
	}
	read = stdlib.OpenDB(*readCfg)
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 25
	}
	read.SetMaxOpenConns(maxConns)
	minConns := cfg.MinConns
	if minConns > 0 {
		read.SetMaxIdleConns(minConns)
	}

	if err := write.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("store: ping postgres write pool: %w", err)
	}
	if err := read.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("store: ping postgres read pool: %w", err)
	}

	return write, read, nil
}
