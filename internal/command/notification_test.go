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

package command_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/command"
	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/testdb"
)

type fakeOwnerLookup struct {
	owners map[string]string
}

func (f *fakeOwnerLookup) NotificationOwner(ctx context.Context, notificationID string) (string, bool, error) {
	owner, ok := f.owners[notificationID]
	return owner, ok, nil
}

func seedPendingNotification(t *testing.T, store eventstore.Store, id string) {
	t.Helper()
	require.NoError(t, store.Append(context.Background(), eventstore.AggregateNotification, id, intPtr(0), []eventstore.PendingEvent{
		{
			EventName: events.ReminderScheduled,
			Payload: events.ReminderScheduledPayload{
				UserID:           "user-1",
				RecipeID:         "recipe-1",
				MealDate:         "2025-10-23",
				ScheduledTime:    time.Date(2025, 10, 22, 9, 0, 0, 0, time.UTC),
				ReminderType:     events.ReminderAdvancePrep,
				PrepHours:        24,
				MaxReminderCount: 3,
			},
		},
	}))
}

func newNotificationService(t *testing.T, owners map[string]string) (*command.NotificationService, eventstore.Store) {
	t.Helper()
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	svc := command.NewNotificationService(store, &fakeOwnerLookup{owners: owners}, zerolog.Nop())
	return svc, store
}

func TestNotificationService_CompleteFromPending(t *testing.T) {
	svc, store := newNotificationService(t, map[string]string{"n1": "user-1"})
	seedPendingNotification(t, store, "n1")

	err := svc.Complete(context.Background(), "user-1", "n1")
	require.NoError(t, err)

	loaded, err := store.Load(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, events.ReminderCompleted, loaded.Events[len(loaded.Events)-1].EventName)
}

// TestNotificationService_OwnershipEnumerationResistance: not-found
// and not-owned must be indistinguishable.
func TestNotificationService_OwnershipEnumerationResistance(t *testing.T) {
	svcNotFound, _ := newNotificationService(t, map[string]string{})
	errNotFound := svcNotFound.Complete(context.Background(), "user-1", "does-not-exist")

	svcNotOwned, store := newNotificationService(t, map[string]string{"n1": "someone-else"})
	seedPendingNotification(t, store, "n1")
	errNotOwned := svcNotOwned.Complete(context.Background(), "user-1", "n1")

	require.Error(t, errNotFound)
	require.Error(t, errNotOwned)
	assert.ErrorIs(t, errNotFound, command.ErrNotificationUnavailable)
	assert.ErrorIs(t, errNotOwned, command.ErrNotificationUnavailable)
	assert.Equal(t, errNotFound.Error(), errNotOwned.Error(), "not-found and not-owned responses must be identical")
}

func TestNotificationService_DismissThenCompleteIsInvalidTransition(t *testing.T) {
	svc, store := newNotificationService(t, map[string]string{"n1": "user-1"})
	seedPendingNotification(t, store, "n1")

	require.NoError(t, svc.Dismiss(context.Background(), "user-1", "n1"))

	err := svc.Complete(context.Background(), "user-1", "n1")
	assert.ErrorIs(t, err, command.ErrInvalidTransition)
}

func TestNotificationService_Snooze(t *testing.T) {
	svc, store := newNotificationService(t, map[string]string{"n1": "user-1"})
	seedPendingNotification(t, store, "n1")

	until := time.Now().Add(2 * time.Hour)
	require.NoError(t, svc.Snooze(context.Background(), "user-1", "n1", until))

	loaded, err := store.Load(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, events.ReminderSnoozed, loaded.Events[len(loaded.Events)-1].EventName)

	// A snoozed reminder cannot be snoozed again directly; it must first
	// return to pending.
	err = svc.Snooze(context.Background(), "user-1", "n1", until)
	assert.ErrorIs(t, err, command.ErrInvalidTransition)
}
