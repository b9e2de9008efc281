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

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/aggregate"
	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
)

// NotificationOwnerLookup answers who a notification belongs to, from
// the notifications read table — the command layer checks ownership
// against the projection rather than paying for a full aggregate replay
// just to reject someone else's id.
type NotificationOwnerLookup interface {
	NotificationOwner(ctx context.Context, notificationID string) (userID string, found bool, err error)
}

// NotificationService implements the reminder Complete/Dismiss/Snooze
// commands. Every method returns the same ErrNotificationUnavailable
// whether the id does not exist or belongs to another user, so one
// user can never enumerate another's notification ids.
type NotificationService struct {
	store  eventstore.Store
	owners NotificationOwnerLookup
	log    zerolog.Logger
	now    func() time.Time
}

// NewNotificationService wires the command's collaborators.
func NewNotificationService(store eventstore.Store, owners NotificationOwnerLookup, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		owners: owners,
		log:    log.With().Str("component", "command.notification").Logger(),
		now:    time.Now,
	}
}

// Complete marks a reminder done — from pending or sent.
func (s *NotificationService) Complete(ctx context.Context, userID, notificationID string) error {
	return s.transition(ctx, userID, notificationID, aggregate.NotificationCompleted, func(expected int) eventstore.PendingEvent {
		return eventstore.PendingEvent{
			EventName: events.ReminderCompleted,
			Payload:   events.ReminderCompletedPayload{At: s.now()},
			Metadata:  eventstore.Metadata{UserID: userID},
		}
	})
}

// Dismiss cancels a pending reminder outright.
func (s *NotificationService) Dismiss(ctx context.Context, userID, notificationID string) error {
	return s.transition(ctx, userID, notificationID, aggregate.NotificationDismissed, func(expected int) eventstore.PendingEvent {
		return eventstore.PendingEvent{
			EventName: events.ReminderDismissed,
			Payload:   events.ReminderDismissedPayload{At: s.now(), Reason: "user"},
			Metadata:  eventstore.Metadata{UserID: userID},
		}
	})
}

// Snooze postpones a pending reminder until until.
func (s *NotificationService) Snooze(ctx context.Context, userID, notificationID string, until time.Time) error {
	return s.transition(ctx, userID, notificationID, aggregate.NotificationSnoozed, func(expected int) eventstore.PendingEvent {
		return eventstore.PendingEvent{
			EventName: events.ReminderSnoozed,
			Payload:   events.ReminderSnoozedPayload{SnoozedUntil: until},
			Metadata:  eventstore.Metadata{UserID: userID},
		}
	})
}

func (s *NotificationService) transition(
	ctx context.Context,
	userID, notificationID string,
	target aggregate.NotificationStatus,
	build func(expectedVersion int) eventstore.PendingEvent,
) error {
	owner, found, err := s.owners.NotificationOwner(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("command: lookup notification owner: %w", err)
	}
	if !found || owner != userID {
		return ErrNotificationUnavailable
	}

	state := aggregate.NewNotification(notificationID)
	version, err := aggregate.Rebuild(ctx, s.store, notificationID, state)
	if err != nil {
		return fmt.Errorf("command: rebuild notification: %w", err)
	}
	if !state.CanTransition(target) {
		return ErrInvalidTransition
	}

	pending := build(version)
	if err := s.store.Append(ctx, eventstore.AggregateNotification, notificationID, &version, []eventstore.PendingEvent{pending}); err != nil {
		return fmt.Errorf("command: append %s: %w", pending.EventName, err)
	}
	return nil
}
