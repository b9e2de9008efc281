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

package eventstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/imkitchen/imkitchen/internal/store"
)

// Store is the contract every aggregate command handler uses to read and
// write its own history. There is no cross-aggregate query here by design
// — events reference aggregate ids only as opaque strings.
type Store interface {
	// Create starts a brand new aggregate stream and returns its id.
	Create(ctx context.Context, aggType AggregateType, first PendingEvent) (aggregateID string, err error)

	// Append adds one or more events to an existing stream. When
	// expectedVersion is non-nil, the append fails with
	// ErrConcurrentUpdate if the stream's current version does not match.
	Append(ctx context.Context, aggType AggregateType, aggregateID string, expectedVersion *int, events []PendingEvent) error

	// Load replays a stream in version order. Returns ErrNotFound if the
	// stream has no events.
	Load(ctx context.Context, aggregateID string) (Loaded, error)

	// SaveSnapshot persists an accelerator for replay. It must never be
	// the only copy of truth — Load always remains correct without it.
	SaveSnapshot(ctx context.Context, aggregateID string, version int, state []byte) error

	// LoadSnapshot returns the most recent snapshot at or below the
	// aggregate's current version, if any.
	LoadSnapshot(ctx context.Context, aggregateID string) (version int, state []byte, ok bool, err error)
}

// Loaded is the result of a full (or snapshot-accelerated) replay.
type Loaded struct {
	Events         []Event
	CurrentVersion int
}

// SQLStore implements Store over database/sql. Writes go through a single
// connection so that per-aggregate appends are serialized by the
// (aggregate_id, version) unique index; reads may use a separate, pooled connection.
type SQLStore struct {
	write *store.DB
	read  *store.DB
}

// NewSQLStore builds a store. If read is nil, write is used for reads too.
func NewSQLStore(write, read *store.DB) *SQLStore {
	if read == nil {
		read = write
	}
	return &SQLStore{write: write, read: read}
}

func (s *SQLStore) Create(ctx context.Context, aggType AggregateType, first PendingEvent) (string, error) {
	aggregateID := uuid.New().String()
	if err := s.Append(ctx, aggType, aggregateID, nil, []PendingEvent{first}); err != nil {
		return "", err
	}
	return aggregateID, nil
}

func (s *SQLStore) Append(ctx context.Context, aggType AggregateType, aggregateID string, expectedVersion *int, events []PendingEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("eventstore: begin append tx: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM event WHERE aggregate_id = ?`,
		aggregateID,
	).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("eventstore: read current version: %w", err)
	}

	if expectedVersion != nil && *expectedVersion != currentVersion {
		return ErrConcurrentUpdate
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO event (id, aggregate_type, aggregate_id, version, event_name, payload, metadata_user_id, metadata_request_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("eventstore: prepare insert: %w", err)
	}
	defer stmt.Close()

	version := currentVersion
	for _, pe := range events {
		payload, err := EncodePayload(pe.Payload)
		if err != nil {
			return err
		}
		version++
		ev := Event{
			ID:            uuid.New(),
			AggregateType: aggType,
			AggregateID:   aggregateID,
			Version:       version,
			EventName:     pe.EventName,
			Payload:       payload,
			Metadata:      pe.Metadata,
		}
		_, err = stmt.ExecContext(ctx,
			ev.ID.String(), string(ev.AggregateType), ev.AggregateID, ev.Version,
			ev.EventName, ev.Payload, ev.Metadata.UserID, ev.Metadata.RequestID, nowFunc(),
		)
		if err != nil {
			return fmt.Errorf("eventstore: insert event %s v%d: %w", ev.EventName, ev.Version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("eventstore: commit append: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, aggregateID string) (Loaded, error) {
	rows, err := s.read.QueryContext(ctx, `
		SELECT sequence, id, aggregate_type, aggregate_id, version, event_name, payload, metadata_user_id, metadata_request_id, timestamp
		FROM event
		WHERE aggregate_id = ?
		ORDER BY version ASC
	`, aggregateID)
	if err != nil {
		return Loaded{}, fmt.Errorf("eventstore: load query: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev       Event
			idStr    string
			aggType  string
			userID   sql.NullString
			reqID    sql.NullString
			ts       interface{}
		)
		if err := rows.Scan(&ev.Sequence, &idStr, &aggType, &ev.AggregateID, &ev.Version, &ev.EventName, &ev.Payload, &userID, &reqID, &ts); err != nil {
			return Loaded{}, fmt.Errorf("eventstore: scan event: %w", err)
		}
		ev.ID = uuid.MustParse(idStr)
		ev.AggregateType = AggregateType(aggType)
		ev.Metadata = Metadata{UserID: userID.String, RequestID: reqID.String}
		ev.Timestamp = parseTimestamp(ts)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return Loaded{}, fmt.Errorf("eventstore: load rows: %w", err)
	}
	if len(events) == 0 {
		return Loaded{}, ErrNotFound
	}

	return Loaded{Events: events, CurrentVersion: events[len(events)-1].Version}, nil
}

func (s *SQLStore) SaveSnapshot(ctx context.Context, aggregateID string, version int, state []byte) error {
	_, err := s.write.ExecContext(ctx, `
		INSERT INTO snapshot (aggregate_id, version, state, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (aggregate_id) DO UPDATE SET version = excluded.version, state = excluded.state, updated_at = excluded.updated_at
	`, aggregateID, version, state, nowFunc())
	if err != nil {
		return fmt.Errorf("eventstore: save snapshot: %w", err)
	}
	return nil
}

func (s *SQLStore) LoadSnapshot(ctx context.Context, aggregateID string) (int, []byte, bool, error) {
	var version int
	var state []byte
	err := s.read.QueryRowContext(ctx,
		`SELECT version, state FROM snapshot WHERE aggregate_id = ?`, aggregateID,
	).Scan(&version, &state)
	if err == sql.ErrNoRows {
		return 0, nil, false, nil
	}
	if err != nil {
		return 0, nil, false, fmt.Errorf("eventstore: load snapshot: %w", err)
	}
	return version, state, true, nil
}
