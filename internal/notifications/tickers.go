package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/aggregate"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/eventstore"
)

// DueAssignment is one prep_required assignment a ticker considers for
// scheduling, resolved from the meal_assignments/recipes read tables.
type DueAssignment struct {
	UserID           string
	RecipeID         string
	RecipeTitle      string
	PrepTask         string
	MealDate         string // ISO 8601
	CourseType       events.CourseType
	AdvancePrepHours int
}

// CarryOverCandidate is a sent notification whose meal has already
// passed without being completed.
type CarryOverCandidate struct {
	ID               string
	ReminderCount    int
	MaxReminderCount int
}

// TickerReader answers the read-table queries the periodic tickers
// run, the same read-table access pattern as RecipeLookup in
// scheduler.go.
type TickerReader interface {
	AssignmentsOnDate(ctx context.Context, date string) ([]DueAssignment, error)
	AlreadyScheduled(ctx context.Context, userID, recipeID, mealDate string, reminderType events.ReminderType) (bool, error)
	SentPastMealDate(ctx context.Context, today string) ([]CarryOverCandidate, error)
	PendingPastMealDate(ctx context.Context, today string) ([]string, error)
	SnoozedDue(ctx context.Context, now time.Time) ([]string, error)
}

// Ticker runs the four periodic reminder jobs, each
// idempotent against redelivery the way a cron-triggered run must be.
type Ticker struct {
	// MaxReminderCount caps how many times a reminder is carried over
	// before expiring. Defaults to 3.
	MaxReminderCount int

	reader TickerReader
	store  eventstore.Store
	log    zerolog.Logger
	now    func() time.Time
}

// NewTicker wires the ticker's collaborators.
func NewTicker(reader TickerReader, store eventstore.Store, log zerolog.Logger) *Ticker {
	return &Ticker{
		MaxReminderCount: 3,
		reader:           reader,
		store:            store,
		log:              log.With().Str("component", "notifications.ticker").Logger(),
		now:              time.Now,
	}
}

// RunMorning schedules morning reminders for tomorrow's assignments with
// advance_prep_hours in [1,24] that have not already been scheduled.
func (t *Ticker) RunMorning(ctx context.Context) error {
	tomorrow := t.now().AddDate(0, 0, 1).Format("2006-01-02")
	assignments, err := t.reader.AssignmentsOnDate(ctx, tomorrow)
	if err != nil {
		return fmt.Errorf("notifications: morning ticker: %w", err)
	}
	for _, a := range assignments {
		if a.AdvancePrepHours < 1 || a.AdvancePrepHours > 24 {
			continue
		}
		if err := t.scheduleIfNew(ctx, a, events.ReminderMorning, a.MealDate, ""); err != nil {
			t.log.Warn().Err(err).Str("recipe_id", a.RecipeID).Msg("morning ticker: schedule failed")
		}
	}
	return nil
}

// RunDayOf schedules day-of reminders 1 hour before each course's default
// serving time, for today's assignments.
func (t *Ticker) RunDayOf(ctx context.Context) error {
	today := t.now().Format("2006-01-02")
	assignments, err := t.reader.AssignmentsOnDate(ctx, today)
	if err != nil {
		return fmt.Errorf("notifications: day-of ticker: %w", err)
	}
	for _, a := range assignments {
		if a.AdvancePrepHours <= 0 {
			continue
		}
		if err := t.scheduleIfNew(ctx, a, events.ReminderDayOf, today, defaultCourseTime(a.CourseType)); err != nil {
			t.log.Warn().Err(err).Str("recipe_id", a.RecipeID).Msg("day-of ticker: schedule failed")
		}
	}
	return nil
}

func (t *Ticker) scheduleIfNew(ctx context.Context, a DueAssignment, reminderType events.ReminderType, date, courseTime string) error {
	already, err := t.reader.AlreadyScheduled(ctx, a.UserID, a.RecipeID, a.MealDate, reminderType)
	if err != nil {
		return fmt.Errorf("check already scheduled: %w", err)
	}
	if already {
		return nil
	}

	var scheduledTime time.Time
	switch reminderType {
	case events.ReminderDayOf:
		scheduledTime = dayOfReminderTime(t.now(), date, courseTime)
	default:
		// Morning ticker computes meal_datetime − h hours directly rather
		// than through CalculateReminderTime's advance_prep/day_of
		// classify branches, since this ticker's own [1,24] range can
		// fall below the 4h morning/day_of boundary those branches use.
		scheduledTime, err = morningReminderTime(t.now(), date, a.AdvancePrepHours)
		if err != nil {
			return err
		}
	}

	payload := events.ReminderScheduledPayload{
		UserID:           a.UserID,
		RecipeID:         a.RecipeID,
		MealDate:         a.MealDate,
		ScheduledTime:    scheduledTime,
		ReminderType:     reminderType,
		PrepHours:        a.AdvancePrepHours,
		PrepTask:         a.PrepTask,
		MessageBody:      GenerateAssignmentReminderBody(a.RecipeTitle, a.PrepTask, a.MealDate, a.AdvancePrepHours),
		MaxReminderCount: t.MaxReminderCount,
	}
	_, err = t.store.Create(ctx, eventstore.AggregateNotification, eventstore.PendingEvent{
		EventName: events.ReminderScheduled,
		Payload:   payload,
		Metadata:  eventstore.Metadata{UserID: a.UserID},
	})
	if err != nil {
		return fmt.Errorf("create notification stream: %w", err)
	}
	return nil
}

// morningReminderTime is meal_datetime − prepHours, meal time defaulted
// to 18:00, clamped to now+1 minute if already past.
func morningReminderTime(now time.Time, date string, prepHours int) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid meal_date %q: %w", date, err)
	}
	mealDateTime := time.Date(day.Year(), day.Month(), day.Day(), 18, 0, 0, 0, now.Location())
	at := mealDateTime.Add(-time.Duration(prepHours) * time.Hour)
	if at.Before(now) {
		return now.Add(time.Minute), nil
	}
	return at, nil
}

// dayOfReminderTime is 1 hour before courseTime on date, clamped to
// now+1 minute if already past.
func dayOfReminderTime(now time.Time, date, courseTime string) time.Time {
	day, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return now.Add(time.Minute)
	}
	clock, err := time.Parse("15:04", courseTime)
	if err != nil {
		return now.Add(time.Minute)
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location()).Add(-time.Hour)
	if at.Before(now) {
		return now.Add(time.Minute)
	}
	return at
}

// RunCarryOver bumps reminder_count and reschedules for 09:00 tomorrow on
// every sent-but-uncompleted notification whose meal has already passed;
// past-max ones expire instead.
func (t *Ticker) RunCarryOver(ctx context.Context) error {
	today := t.now().Format("2006-01-02")
	candidates, err := t.reader.SentPastMealDate(ctx, today)
	if err != nil {
		return fmt.Errorf("notifications: carry-over ticker: %w", err)
	}
	tomorrow9am := time.Date(t.now().Year(), t.now().Month(), t.now().Day(), 9, 0, 0, 0, t.now().Location()).AddDate(0, 0, 1)

	for _, c := range candidates {
		if err := t.carryOverOne(ctx, c, tomorrow9am); err != nil {
			t.log.Warn().Err(err).Str("notification_id", c.ID).Msg("carry-over ticker: transition failed")
		}
	}
	return nil
}

func (t *Ticker) carryOverOne(ctx context.Context, c CarryOverCandidate, tomorrow9am time.Time) error {
	state := aggregate.NewNotification(c.ID)
	version, err := aggregate.Rebuild(ctx, t.store, c.ID, state)
	if err != nil {
		return err
	}

	maxCount := c.MaxReminderCount
	if maxCount == 0 {
		maxCount = t.MaxReminderCount
	}
	if c.ReminderCount >= maxCount {
		if !state.CanTransition(aggregate.NotificationExpired) {
			return nil
		}
		return t.store.Append(ctx, eventstore.AggregateNotification, c.ID, &version, []eventstore.PendingEvent{{
			EventName: events.ReminderExpired,
			Payload:   events.ReminderExpiredPayload{At: t.now()},
		}})
	}

	if !state.CanTransition(aggregate.NotificationPending) {
		return nil
	}
	return t.store.Append(ctx, eventstore.AggregateNotification, c.ID, &version, []eventstore.PendingEvent{{
		EventName: events.ReminderCarriedOver,
		Payload: events.ReminderCarriedOverPayload{
			NewScheduledTime: tomorrow9am,
			ReminderCount:    c.ReminderCount + 1,
		},
	}})
}

// RunAutoDismiss dismisses pending reminders whose meal has already
// passed without being sent.
func (t *Ticker) RunAutoDismiss(ctx context.Context) error {
	today := t.now().Format("2006-01-02")
	ids, err := t.reader.PendingPastMealDate(ctx, today)
	if err != nil {
		return fmt.Errorf("notifications: auto-dismiss ticker: %w", err)
	}
	for _, id := range ids {
		if err := t.dismissOne(ctx, id); err != nil {
			t.log.Warn().Err(err).Str("notification_id", id).Msg("auto-dismiss ticker: transition failed")
		}
	}
	return nil
}

func (t *Ticker) dismissOne(ctx context.Context, id string) error {
	state := aggregate.NewNotification(id)
	version, err := aggregate.Rebuild(ctx, t.store, id, state)
	if err != nil {
		return err
	}
	if !state.CanTransition(aggregate.NotificationDismissed) {
		return nil
	}
	return t.store.Append(ctx, eventstore.AggregateNotification, id, &version, []eventstore.PendingEvent{{
		EventName: events.ReminderDismissed,
		Payload:   events.ReminderDismissedPayload{At: t.now(), Reason: "expired_window"},
	}})
}

// RunUnsnooze returns snoozed reminders to pending once snoozed_until has
// passed — the state machine's implicit-on-tick transition. Cheap enough to
// run alongside the day-of ticker's 15-minute cadence.
func (t *Ticker) RunUnsnooze(ctx context.Context) error {
	ids, err := t.reader.SnoozedDue(ctx, t.now())
	if err != nil {
		return fmt.Errorf("notifications: unsnooze ticker: %w", err)
	}
	for _, id := range ids {
		if err := t.unsnoozeOne(ctx, id); err != nil {
			t.log.Warn().Err(err).Str("notification_id", id).Msg("unsnooze ticker: transition failed")
		}
	}
	return nil
}

func (t *Ticker) unsnoozeOne(ctx context.Context, id string) error {
	state := aggregate.NewNotification(id)
	version, err := aggregate.Rebuild(ctx, t.store, id, state)
	if err != nil {
		return err
	}
	if !state.CanTransition(aggregate.NotificationPending) {
		return nil
	}
	return t.store.Append(ctx, eventstore.AggregateNotification, id, &version, []eventstore.PendingEvent{{
		EventName: events.ReminderUnsnoozed,
		Payload:   events.ReminderUnsnoozedPayload{At: t.now()},
	}})
}
