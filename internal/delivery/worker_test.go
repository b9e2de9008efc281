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

package delivery_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/delivery"
	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/push"
	"github.com/imkitchen/imkitchen/internal/testdb"
)

type fakeDeliveryReader struct {
	due  []delivery.DueNotification
	subs map[string]push.Subscription
}

func (f *fakeDeliveryReader) DueNotifications(ctx context.Context, now time.Time) ([]delivery.DueNotification, error) {
	return f.due, nil
}

func (f *fakeDeliveryReader) PushSubscriptionForUser(ctx context.Context, userID string) (string, push.Subscription, bool, error) {
	sub, ok := f.subs[userID]
	return userID + "-sub", sub, ok, nil
}

type fakeSender struct {
	err   error
	calls int
}

func (f *fakeSender) Send(ctx context.Context, sub push.Subscription, payload push.Payload) error {
	f.calls++
	return f.err
}

func seedDueNotification(t *testing.T, store eventstore.Store, id string) {
	t.Helper()
	zero := 0
	require.NoError(t, store.Append(context.Background(), eventstore.AggregateNotification, id, &zero, []eventstore.PendingEvent{
		{
			EventName: events.ReminderScheduled,
			Payload: events.ReminderScheduledPayload{
				UserID:           "user-1",
				RecipeID:         "recipe-1",
				MealDate:         "2025-10-23",
				ScheduledTime:    time.Now(),
				ReminderType:     events.ReminderDayOf,
				PrepHours:        1,
				MaxReminderCount: 3,
			},
		},
	}))
}

func lastEventName(t *testing.T, store eventstore.Store, id string) string {
	t.Helper()
	loaded, err := store.Load(context.Background(), id)
	require.NoError(t, err)
	return loaded.Events[len(loaded.Events)-1].EventName
}

// TestWorker_RunOnce_Sent covers the happy-path delivery status.
func TestWorker_RunOnce_Sent(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	seedDueNotification(t, store, "n1")

	reader := &fakeDeliveryReader{
		due:  []delivery.DueNotification{{ID: "n1", UserID: "user-1", MessageBody: "cook now"}},
		subs: map[string]push.Subscription{"user-1": {Endpoint: "https://push.example/ep"}},
	}
	sender := &fakeSender{}
	worker := delivery.NewWorker(reader, sender, store, zerolog.Nop())

	require.NoError(t, worker.RunOnce(context.Background()))
	assert.Equal(t, events.ReminderSent, lastEventName(t, store, "n1"))
	assert.Equal(t, 1, sender.calls)
}

// TestWorker_RunOnce_NoSubscription covers the no_subscription
// status, recorded without attempting to send.
func TestWorker_RunOnce_NoSubscription(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	seedDueNotification(t, store, "n1")

	reader := &fakeDeliveryReader{
		due:  []delivery.DueNotification{{ID: "n1", UserID: "user-1"}},
		subs: map[string]push.Subscription{},
	}
	sender := &fakeSender{}
	worker := delivery.NewWorker(reader, sender, store, zerolog.Nop())

	require.NoError(t, worker.RunOnce(context.Background()))
	assert.Equal(t, events.ReminderSent, lastEventName(t, store, "n1"))
	assert.Zero(t, sender.calls, "must not attempt to send with no subscription on file")

	loaded, err := store.Load(context.Background(), "n1")
	require.NoError(t, err)
	var payload events.ReminderSentPayload
	require.NoError(t, loaded.Events[len(loaded.Events)-1].Decode(&payload))
	assert.Equal(t, events.DeliveryNoSubscription, payload.Status)
}

// TestWorker_RunOnce_EndpointGoneRemovesSubscription covers the 410 branch.
func TestWorker_RunOnce_EndpointGoneRemovesSubscription(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	seedDueNotification(t, store, "n1")

	reader := &fakeDeliveryReader{
		due:  []delivery.DueNotification{{ID: "n1", UserID: "user-1"}},
		subs: map[string]push.Subscription{"user-1": {Endpoint: "https://push.example/ep"}},
	}
	sender := &fakeSender{err: push.ErrEndpointGone}
	worker := delivery.NewWorker(reader, sender, store, zerolog.Nop())

	require.NoError(t, worker.RunOnce(context.Background()))

	loaded, err := store.Load(context.Background(), "n1")
	require.NoError(t, err)
	var payload events.ReminderSentPayload
	require.NoError(t, loaded.Events[len(loaded.Events)-1].Decode(&payload))
	assert.Equal(t, events.DeliveryEndpointInvalid, payload.Status)
	assert.Equal(t, 1, sender.calls, "endpoint_gone must not retry")
}

// TestWorker_RunOnce_RateLimitAbortsBatch covers the rate-limit
// rule: a 429 defers the rest of the batch to the next tick
// rather than recording a failure status.
func TestWorker_RunOnce_RateLimitAbortsBatch(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	seedDueNotification(t, store, "n1")
	seedDueNotification(t, store, "n2")

	reader := &fakeDeliveryReader{
		due: []delivery.DueNotification{
			{ID: "n1", UserID: "user-1"},
			{ID: "n2", UserID: "user-1"},
		},
		subs: map[string]push.Subscription{"user-1": {Endpoint: "https://push.example/ep"}},
	}
	sender := &fakeSender{err: push.ErrRateLimited}
	worker := delivery.NewWorker(reader, sender, store, zerolog.Nop())

	require.NoError(t, worker.RunOnce(context.Background()))

	loaded1, err := store.Load(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, events.ReminderScheduled, loaded1.Events[len(loaded1.Events)-1].EventName, "rate-limited notification must not be marked sent/failed")

	loaded2, err := store.Load(context.Background(), "n2")
	require.NoError(t, err)
	assert.Equal(t, events.ReminderScheduled, loaded2.Events[len(loaded2.Events)-1].EventName, "remaining batch must be deferred, not attempted")
}
