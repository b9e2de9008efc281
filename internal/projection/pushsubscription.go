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

package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/store"
)

// RegisterPushSubscription wires the push_subscriptions read table the
// delivery worker resolves endpoints from.
func RegisterPushSubscription(sub *Subscription, nowFunc func() time.Time) {
	sub.On(events.PushSubscriptionCreated, handlePushSubscriptionCreated(nowFunc))
	sub.On(events.PushSubscriptionRemoved, handlePushSubscriptionRemoved(nowFunc))
	SkipUnhandled(sub)
}

func handlePushSubscriptionCreated(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.PushSubscriptionCreatedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, removed, removed_reason, updated_at)
			VALUES (?, ?, ?, ?, ?, FALSE, '', ?)
			ON CONFLICT (id) DO UPDATE SET
				endpoint = excluded.endpoint, p256dh = excluded.p256dh, auth = excluded.auth,
				removed = FALSE, removed_reason = '', updated_at = excluded.updated_at
		`, event.AggregateID, p.UserID, p.Endpoint, p.P256dhKey, p.AuthKey, nowFunc())
		if err != nil {
			return fmt.Errorf("insert push subscription %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handlePushSubscriptionRemoved(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.PushSubscriptionRemovedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE push_subscriptions SET removed = TRUE, removed_reason = ?, updated_at = ? WHERE id = ?
		`, p.Reason, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("remove push subscription %s: %w", event.AggregateID, err)
		}
		return nil
	}
}
