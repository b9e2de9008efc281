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

package notifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/notifications"
	"github.com/imkitchen/imkitchen/internal/testdb"
)

type fakeRecipeLookup struct {
	prepHours int
	title     string
	prepTask  string
}

func (f *fakeRecipeLookup) PrepInfo(ctx context.Context, recipeID string) (int, string, string, error) {
	return f.prepHours, f.title, f.prepTask, nil
}

// createSpyStore wraps a real Store and counts Create calls, so a test
// can assert how many Notification streams a reactor opened without
// needing to predict the generated ids.
type createSpyStore struct {
	eventstore.Store
	createCalls int
}

func (s *createSpyStore) Create(ctx context.Context, aggType eventstore.AggregateType, first eventstore.PendingEvent) (string, error) {
	s.createCalls++
	return s.Store.Create(ctx, aggType, first)
}

// TestScheduler_ScheduleForWeek_OnlyPrepRequiredAssignments: only
// prep_required assignments with a positive
// advance_prep_hours get a Notification stream.
func TestScheduler_ScheduleForWeek_OnlyPrepRequiredAssignments(t *testing.T) {
	db := testdb.Open(t)
	store := &createSpyStore{Store: eventstore.NewSQLStore(db, db)}
	sched := notifications.NewScheduler(&fakeRecipeLookup{prepHours: 24, title: "Lasagna", prepTask: "marinate"}, store, zerolog.Nop())

	week := events.WeekPlanData{
		Assignments: []events.MealAssignmentData{
			{RecipeID: "r1", Date: "2025-10-23", CourseType: events.CourseMainCourse, PrepRequired: true},
			{RecipeID: "r2", Date: "2025-10-23", CourseType: events.CourseAppetizer, PrepRequired: false},
		},
	}
	sched.ScheduleForWeek(context.Background(), "user-1", week)

	assert.Equal(t, 1, store.createCalls, "only the prep_required assignment should open a Notification stream")
}

func TestScheduler_ScheduleForWeek_ZeroPrepHoursSkipsEntirely(t *testing.T) {
	db := testdb.Open(t)
	store := &createSpyStore{Store: eventstore.NewSQLStore(db, db)}
	sched := notifications.NewScheduler(&fakeRecipeLookup{prepHours: 0}, store, zerolog.Nop())

	week := events.WeekPlanData{
		Assignments: []events.MealAssignmentData{
			{RecipeID: "r1", Date: "2025-10-23", CourseType: events.CourseMainCourse, PrepRequired: true},
		},
	}
	sched.ScheduleForWeek(context.Background(), "user-1", week)
	assert.Zero(t, store.createCalls, "zero prep hours must not schedule a reminder")
}

type fakeTickerReader struct {
	assignments       []notifications.DueAssignment
	alreadyScheduled  bool
	sentPastMealDate  []notifications.CarryOverCandidate
	pendingPastMeal   []string
	snoozedDue        []string
}

func (f *fakeTickerReader) AssignmentsOnDate(ctx context.Context, date string) ([]notifications.DueAssignment, error) {
	return f.assignments, nil
}

func (f *fakeTickerReader) AlreadyScheduled(ctx context.Context, userID, recipeID, mealDate string, reminderType events.ReminderType) (bool, error) {
	return f.alreadyScheduled, nil
}

func (f *fakeTickerReader) SentPastMealDate(ctx context.Context, today string) ([]notifications.CarryOverCandidate, error) {
	return f.sentPastMealDate, nil
}

func (f *fakeTickerReader) PendingPastMealDate(ctx context.Context, today string) ([]string, error) {
	return f.pendingPastMeal, nil
}

func (f *fakeTickerReader) SnoozedDue(ctx context.Context, now time.Time) ([]string, error) {
	return f.snoozedDue, nil
}

func seedSentNotification(t *testing.T, store eventstore.Store, id string, reminderCount int) {
	t.Helper()
	one := 0
	require.NoError(t, store.Append(context.Background(), eventstore.AggregateNotification, id, &one, []eventstore.PendingEvent{
		{
			EventName: events.ReminderScheduled,
			Payload: events.ReminderScheduledPayload{
				UserID:           "user-1",
				RecipeID:         "recipe-1",
				MealDate:         "2025-10-20",
				ScheduledTime:    time.Date(2025, 10, 19, 9, 0, 0, 0, time.UTC),
				ReminderType:     events.ReminderAdvancePrep,
				PrepHours:        24,
				MaxReminderCount: 3,
			},
		},
	}))
	require.NoError(t, store.Append(context.Background(), eventstore.AggregateNotification, id, intPtrN(1), []eventstore.PendingEvent{
		{EventName: events.ReminderSent, Payload: events.ReminderSentPayload{Status: events.DeliverySent, At: time.Now()}},
	}))
	for i := 0; i < reminderCount; i++ {
		require.NoError(t, store.Append(context.Background(), eventstore.AggregateNotification, id, intPtrN(2+2*i), []eventstore.PendingEvent{
			{EventName: events.ReminderCarriedOver, Payload: events.ReminderCarriedOverPayload{NewScheduledTime: time.Now().AddDate(0, 0, 1), ReminderCount: i + 1}},
		}))
		// A carried-over reminder is pending again; deliver it so the
		// notification ends in sent.
		require.NoError(t, store.Append(context.Background(), eventstore.AggregateNotification, id, intPtrN(3+2*i), []eventstore.PendingEvent{
			{EventName: events.ReminderSent, Payload: events.ReminderSentPayload{Status: events.DeliverySent, At: time.Now()}},
		}))
	}
}

func intPtrN(v int) *int { return &v }

// TestTicker_RunCarryOver_BumpsCountAndReschedules covers the
// non-terminal branch: a sent, uncompleted notification whose meal date
// has passed is carried over to tomorrow 09:00 with reminder_count
// incremented.
func TestTicker_RunCarryOver_BumpsCountAndReschedules(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	seedSentNotification(t, store, "n1", 0)

	reader := &fakeTickerReader{sentPastMealDate: []notifications.CarryOverCandidate{{ID: "n1", ReminderCount: 0, MaxReminderCount: 3}}}
	ticker := notifications.NewTicker(reader, store, zerolog.Nop())

	require.NoError(t, ticker.RunCarryOver(context.Background()))

	loaded, err := store.Load(context.Background(), "n1")
	require.NoError(t, err)
	last := loaded.Events[len(loaded.Events)-1]
	assert.Equal(t, events.ReminderCarriedOver, last.EventName)
}

// TestTicker_RunCarryOver_ExpiresAtMaxReminderCount covers the
// terminal branch: once reminder_count has reached max_reminder_count the
// notification expires instead of carrying over again.
func TestTicker_RunCarryOver_ExpiresAtMaxReminderCount(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	seedSentNotification(t, store, "n1", 3)

	reader := &fakeTickerReader{sentPastMealDate: []notifications.CarryOverCandidate{{ID: "n1", ReminderCount: 3, MaxReminderCount: 3}}}
	ticker := notifications.NewTicker(reader, store, zerolog.Nop())

	require.NoError(t, ticker.RunCarryOver(context.Background()))

	loaded, err := store.Load(context.Background(), "n1")
	require.NoError(t, err)
	last := loaded.Events[len(loaded.Events)-1]
	assert.Equal(t, events.ReminderExpired, last.EventName)
}

func TestTicker_RunMorning_SkipsOutOfRangeAdvancePrep(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	reader := &fakeTickerReader{assignments: []notifications.DueAssignment{
		{UserID: "user-1", RecipeID: "r1", MealDate: "2025-10-23", AdvancePrepHours: 30},
	}}
	ticker := notifications.NewTicker(reader, store, zerolog.Nop())
	require.NoError(t, ticker.RunMorning(context.Background()))
}

func TestTicker_RunMorning_SchedulesWithinRange(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	reader := &fakeTickerReader{assignments: []notifications.DueAssignment{
		{UserID: "user-1", RecipeID: "r1", RecipeTitle: "Soup", MealDate: "2099-10-23", AdvancePrepHours: 6},
	}}
	ticker := notifications.NewTicker(reader, store, zerolog.Nop())
	require.NoError(t, ticker.RunMorning(context.Background()))
}

func TestTicker_RunMorning_SkipsAlreadyScheduled(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	reader := &fakeTickerReader{
		alreadyScheduled: true,
		assignments: []notifications.DueAssignment{
			{UserID: "user-1", RecipeID: "r1", MealDate: "2099-10-23", AdvancePrepHours: 6},
		},
	}
	ticker := notifications.NewTicker(reader, store, zerolog.Nop())
	require.NoError(t, ticker.RunMorning(context.Background()))
}

func TestTicker_RunAutoDismiss_DismissesPendingPastMeals(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	require.NoError(t, store.Append(context.Background(), eventstore.AggregateNotification, "n1", intPtrN(0), []eventstore.PendingEvent{
		{
			EventName: events.ReminderScheduled,
			Payload: events.ReminderScheduledPayload{
				UserID: "user-1", RecipeID: "r1", MealDate: "2025-10-20",
				ScheduledTime: time.Date(2025, 10, 19, 9, 0, 0, 0, time.UTC),
				ReminderType:  events.ReminderAdvancePrep, PrepHours: 24, MaxReminderCount: 3,
			},
		},
	}))

	reader := &fakeTickerReader{pendingPastMeal: []string{"n1"}}
	ticker := notifications.NewTicker(reader, store, zerolog.Nop())
	require.NoError(t, ticker.RunAutoDismiss(context.Background()))

	loaded, err := store.Load(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, events.ReminderDismissed, loaded.Events[len(loaded.Events)-1].EventName)
}

func TestTicker_RunUnsnooze_ReturnsToPending(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	require.NoError(t, store.Append(context.Background(), eventstore.AggregateNotification, "n1", intPtrN(0), []eventstore.PendingEvent{
		{
			EventName: events.ReminderScheduled,
			Payload: events.ReminderScheduledPayload{
				UserID: "user-1", RecipeID: "r1", MealDate: "2099-10-20",
				ScheduledTime: time.Now().Add(time.Hour),
				ReminderType:  events.ReminderMorning, PrepHours: 6, MaxReminderCount: 3,
			},
		},
	}))
	require.NoError(t, store.Append(context.Background(), eventstore.AggregateNotification, "n1", intPtrN(1), []eventstore.PendingEvent{
		{EventName: events.ReminderSnoozed, Payload: events.ReminderSnoozedPayload{SnoozedUntil: time.Now()}},
	}))

	reader := &fakeTickerReader{snoozedDue: []string{"n1"}}
	ticker := notifications.NewTicker(reader, store, zerolog.Nop())
	require.NoError(t, ticker.RunUnsnooze(context.Background()))

	loaded, err := store.Load(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, events.ReminderUnsnoozed, loaded.Events[len(loaded.Events)-1].EventName)
}
