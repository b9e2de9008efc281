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

// RegisterNotification wires the Notification stream's read-table
// projection: one row per notification id, kept in sync
// with the status machine so the delivery worker and the query facade
// never need to fold event streams themselves.
func RegisterNotification(sub *Subscription, nowFunc func() time.Time) {
	sub.On(events.ReminderScheduled, handleReminderScheduled(nowFunc))
	sub.On(events.ReminderSent, handleReminderSent(nowFunc))
	sub.On(events.ReminderCompleted, handleReminderCompleted(nowFunc))
	sub.On(events.ReminderDismissed, handleReminderDismissed(nowFunc))
	sub.On(events.ReminderSnoozed, handleReminderSnoozed(nowFunc))
	sub.On(events.ReminderUnsnoozed, handleReminderUnsnoozed(nowFunc))
	sub.On(events.ReminderCarriedOver, handleReminderCarriedOver(nowFunc))
	sub.On(events.ReminderExpired, handleReminderExpired(nowFunc))
	SkipUnhandled(sub)
}

func handleReminderScheduled(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.ReminderScheduledPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		// meal_assignment_week_id is left blank: the scheduler's payload
		// (internal/notifications/scheduler.go) identifies an assignment by
		// recipe_id + meal_date, not by the week it came from.
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (
				id, user_id, meal_assignment_week_id, meal_assignment_date,
				recipe_id, prep_task, message_body, reminder_type, status,
				scheduled_time, reminder_count, max_reminder_count, updated_at
			) VALUES (?, ?, '', ?, ?, ?, ?, ?, 'pending', ?, 0, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				user_id = excluded.user_id,
				meal_assignment_date = excluded.meal_assignment_date,
				recipe_id = excluded.recipe_id,
				prep_task = excluded.prep_task,
				message_body = excluded.message_body,
				reminder_type = excluded.reminder_type,
				status = 'pending',
				scheduled_time = excluded.scheduled_time,
				max_reminder_count = excluded.max_reminder_count,
				updated_at = excluded.updated_at
		`, event.AggregateID, p.UserID, p.MealDate, p.RecipeID, p.PrepTask, p.MessageBody,
			string(p.ReminderType), p.ScheduledTime, p.MaxReminderCount, nowFunc())
		if err != nil {
			return fmt.Errorf("insert notification %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleReminderSent(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.ReminderSentPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		status := "sent"
		if p.Status != events.DeliverySent {
			status = "failed"
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE notifications SET status = ?, sent_at = ?, updated_at = ?
			WHERE id = ?
		`, status, p.At, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("mark notification %s sent: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleReminderCompleted(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE notifications SET status = 'completed', updated_at = ? WHERE id = ?
		`, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("complete notification %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleReminderDismissed(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE notifications SET status = 'dismissed', updated_at = ? WHERE id = ?
		`, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("dismiss notification %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleReminderSnoozed(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.ReminderSnoozedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE notifications SET status = 'snoozed', snoozed_until = ?, updated_at = ? WHERE id = ?
		`, p.SnoozedUntil, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("snooze notification %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleReminderUnsnoozed(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE notifications SET status = 'pending', snoozed_until = NULL, updated_at = ? WHERE id = ?
		`, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("unsnooze notification %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleReminderCarriedOver(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.ReminderCarriedOverPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE notifications
			SET status = 'pending', scheduled_time = ?, reminder_count = ?, snoozed_until = NULL, updated_at = ?
			WHERE id = ?
		`, p.NewScheduledTime, p.ReminderCount, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("carry over notification %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleReminderExpired(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE notifications SET status = 'expired', updated_at = ? WHERE id = ?
		`, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("expire notification %s: %w", event.AggregateID, err)
		}
		return nil
	}
}
