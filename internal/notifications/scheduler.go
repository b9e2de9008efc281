package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/eventstore"
)

// RecipeLookup answers the prep-hours/title questions the scheduler needs
// per assignment. Grounded on the recipes read table.
type RecipeLookup interface {
	PrepInfo(ctx context.Context, recipeID string) (advancePrepHours int, title string, prepTask string, err error)
}

// Scheduler turns newly generated or regenerated assignments into
// ReminderScheduled events — one new Notification stream per qualifying
// assignment. It runs as a synchronous collaborator off
// the meal-plan command, the same shape as the shopping-list
// collaborator. It is a reactor, not a read-model projection: a reactor
// that appends new aggregate streams cannot safely run inside a
// projection handler's transaction against the single-connection write
// pool, so it is invoked directly after the meal-plan event commits,
// exactly like GenerateForWeek.
type Scheduler struct {
	recipes RecipeLookup
	store   eventstore.Store
	log     zerolog.Logger
	now     func() time.Time
}

// NewScheduler wires the scheduler's collaborators.
func NewScheduler(recipes RecipeLookup, store eventstore.Store, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		recipes: recipes,
		store:   store,
		log:     log.With().Str("component", "notifications.scheduler").Logger(),
		now:     time.Now,
	}
}

// ScheduleForWeek schedules reminders for every prep_required assignment
// in week. Failures to schedule one assignment are logged and skipped
// rather than aborting the rest — a missed reminder is recoverable by the
// periodic tickers, a lost meal plan is not.
func (s *Scheduler) ScheduleForWeek(ctx context.Context, userID string, week events.WeekPlanData) {
	for _, a := range week.Assignments {
		if !a.PrepRequired {
			continue
		}
		if err := s.scheduleOne(ctx, userID, a); err != nil {
			s.log.Warn().Err(err).Str("recipe_id", a.RecipeID).Str("date", a.Date).Msg("failed to schedule reminder")
		}
	}
}

func (s *Scheduler) scheduleOne(ctx context.Context, userID string, a events.MealAssignmentData) error {
	prepHours, title, prepTask, err := s.recipes.PrepInfo(ctx, a.RecipeID)
	if err != nil {
		return fmt.Errorf("notifications: recipe lookup: %w", err)
	}
	if prepHours <= 0 {
		return nil
	}

	scheduledTime, err := CalculateReminderTime(s.now(), a.Date, defaultCourseTime(a.CourseType), prepHours)
	if err != nil {
		return err
	}

	payload := events.ReminderScheduledPayload{
		UserID:           userID,
		RecipeID:         a.RecipeID,
		MealDate:         a.Date,
		ScheduledTime:    scheduledTime,
		ReminderType:     DetermineReminderType(prepHours),
		PrepHours:        prepHours,
		PrepTask:         prepTask,
		MessageBody:      GenerateAssignmentReminderBody(title, prepTask, a.Date, prepHours),
		MaxReminderCount: 3,
	}
	pending := eventstore.PendingEvent{
		EventName: events.ReminderScheduled,
		Payload:   payload,
		Metadata:  eventstore.Metadata{UserID: userID},
	}
	if _, err := s.store.Create(ctx, eventstore.AggregateNotification, pending); err != nil {
		return fmt.Errorf("notifications: create stream: %w", err)
	}
	return nil
}
