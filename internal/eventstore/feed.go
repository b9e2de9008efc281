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

// FeedEvent pairs an Event with its global sequence, the cursor unit
// projections advance by.
type FeedEvent struct {
	Event    Event
	Sequence int64
}

// Feed exposes the write log in global append order, independent of any
// one aggregate's stream — what the projection runtime replays from.
type Feed interface {
	Since(ctx context.Context, cursor int64) ([]FeedEvent, error)
}

// SQLFeed reads the shared event table in sequence order.
type SQLFeed struct {
	read  *store.DB
	batch int
}

// NewSQLFeed builds a feed reading up to batch events per call. batch <= 0
// defaults to 500.
func NewSQLFeed(read *store.DB, batch int) *SQLFeed {
	if batch <= 0 {
		batch = 500
	}
	return &SQLFeed{read: read, batch: batch}
}

func (f *SQLFeed) Since(ctx context.Context, cursor int64) ([]FeedEvent, error) {
	rows, err := f.read.QueryContext(ctx, `
		SELECT sequence, id, aggregate_type, aggregate_id, version, event_name, payload, metadata_user_id, metadata_request_id, timestamp
		FROM event
		WHERE sequence > ?
		ORDER BY sequence ASC
		LIMIT ?
	`, cursor, f.batch)
	if err != nil {
		return nil, fmt.Errorf("eventstore: feed query: %w", err)
	}
	defer rows.Close()

	var out []FeedEvent
	for rows.Next() {
		var (
			ev      Event
			idStr   string
			aggType string
			userID  sql.NullString
			reqID   sql.NullString
			ts      interface{}
		)
		if err := rows.Scan(&ev.Sequence, &idStr, &aggType, &ev.AggregateID, &ev.Version, &ev.EventName, &ev.Payload, &userID, &reqID, &ts); err != nil {
			return nil, fmt.Errorf("eventstore: feed scan: %w", err)
		}
		ev.ID = uuid.MustParse(idStr)
		ev.AggregateType = AggregateType(aggType)
		ev.Metadata = Metadata{UserID: userID.String, RequestID: reqID.String}
		ev.Timestamp = parseTimestamp(ts)
		out = append(out, FeedEvent{Event: ev, Sequence: ev.Sequence})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventstore: feed rows: %w", err)
	}
	return out, nil
}
