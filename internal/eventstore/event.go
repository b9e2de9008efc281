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

// Package eventstore implements the append-only event log:
// create/append/load against a single writer, with full
// replay as the aggregate rebuild contract.
package eventstore

import (
	"time"

	"github.com/google/uuid"
)

// AggregateType names one of the closed set of aggregates the core owns.
type AggregateType string

const (
	AggregateUser             AggregateType = "user"
	AggregateRecipe           AggregateType = "recipe"
	AggregateMealPlan         AggregateType = "meal_plan"
	AggregateContactMessage   AggregateType = "contact_message"
	AggregateNotification     AggregateType = "notification"
	AggregatePushSubscription AggregateType = "push_subscription"
)

// Metadata travels alongside every event; it never participates in fold logic.
type Metadata struct {
	UserID    string `msgpack:"user_id,omitempty"`
	RequestID string `msgpack:"request_id,omitempty"`
}

// Event is the stored tuple (aggregate_type, aggregator_id,
// version, event_name, payload, metadata, timestamp). (aggregator_id,
// version) is unique and versions are contiguous starting at 1.
type Event struct {
	ID            uuid.UUID
	Sequence      int64 // global append order, used by projection feeds
	AggregateType AggregateType
	AggregateID   string
	Version       int
	EventName     string
	Payload       []byte
	Metadata      Metadata
	Timestamp     time.Time
}

// Decode unmarshals the event payload into v using the store's wire codec.
func (e Event) Decode(v interface{}) error {
	if err := DecodePayload(e.Payload, v); err != nil {
		return err
	}
	return nil
}

// PendingEvent is an event not yet assigned a version, submitted via Append.
type PendingEvent struct {
	EventName string
	Payload   interface{}
	Metadata  Metadata
}
