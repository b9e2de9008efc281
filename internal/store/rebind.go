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
	"strconv"
	"strings"
)

// Dialect identifies which placeholder syntax a DB/Tx rebinds queries to.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Rebind rewrites a query authored with `?` placeholders — the only
// style internal/eventstore, internal/projection, internal/query, and
// internal/command write — into dialect's native placeholder syntax.
// SQLite's driver accepts `?` as-is, so this is a no-op there. pgx's
// database/sql binding does no rebinding of its own and rejects `?`
// outright, so every query bound for Postgres passes through here
// first. Placeholders inside string literals are not special-cased:
// none of the SQL this repo writes embeds a literal `?`.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.ContainsRune(query, '?') {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// DB wraps a *sql.DB, rebinding every query that passes through it to
// its dialect's placeholder syntax. Every other *sql.DB method
// (Close, PingContext, SetMaxOpenConns, ...) is promoted unchanged via
// embedding.
type DB struct {
	*sql.DB
	dialect Dialect
}

// NewDB wraps db so every query issued through it targets dialect.
func NewDB(db *sql.DB, dialect Dialect) *DB {
	return &DB{DB: db, dialect: dialect}
}

// Dialect reports which placeholder syntax this handle rebinds to.
func (d *DB) Dialect() Dialect { return d.dialect }

func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.DB.ExecContext(ctx, Rebind(d.dialect, query), args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.DB.QueryContext(ctx, Rebind(d.dialect, query), args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.DB.QueryRowContext(ctx, Rebind(d.dialect, query), args...)
}

func (d *DB) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return d.DB.PrepareContext(ctx, Rebind(d.dialect, query))
}

// BeginTx starts a transaction whose Exec/Query/Prepare methods rebind
// the same way d's do.
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := d.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx, dialect: d.dialect}, nil
}

// Tx wraps a *sql.Tx the same way DB wraps a *sql.DB.
type Tx struct {
	*sql.Tx
	dialect Dialect
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.Tx.ExecContext(ctx, Rebind(t.dialect, query), args...)
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.Tx.QueryContext(ctx, Rebind(t.dialect, query), args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.Tx.QueryRowContext(ctx, Rebind(t.dialect, query), args...)
}

func (t *Tx) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return t.Tx.PrepareContext(ctx, Rebind(t.dialect, query))
}
