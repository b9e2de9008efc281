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

// RegisterContactMessage wires the contact_messages read table an admin
// queue reads from.
func RegisterContactMessage(sub *Subscription, nowFunc func() time.Time) {
	sub.On(events.ContactMessageSubmitted, handleContactMessageSubmitted(nowFunc))
	sub.On(events.ContactMessageRead, handleContactMessageStatus("read", nowFunc))
	sub.On(events.ContactMessageResolved, handleContactMessageStatus("resolved", nowFunc))
	SkipUnhandled(sub)
}

func handleContactMessageSubmitted(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.ContactMessageSubmittedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contact_messages (id, user_id, name, email, subject, body, status, resolved_by, updated_at)
			VALUES (?, '', ?, ?, ?, ?, 'new', '', ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name, email = excluded.email, subject = excluded.subject,
				body = excluded.body, status = 'new', updated_at = excluded.updated_at
		`, event.AggregateID, p.Name, p.Email, p.Subject, p.Body, nowFunc())
		if err != nil {
			return fmt.Errorf("insert contact message %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleContactMessageStatus(status string, nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		_, err := tx.ExecContext(ctx, `UPDATE contact_messages SET status = ?, updated_at = ? WHERE id = ?`,
			status, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("set contact message %s status %s: %w", event.AggregateID, status, err)
		}
		return nil
	}
}
