// Package delivery implements the push-delivery worker: poll due
// notifications, attempt delivery with backoff, and
// record the outcome back onto the Notification aggregate.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/aggregate"
	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/push"
)

// DueNotification is one pending reminder whose scheduled_time has arrived.
type DueNotification struct {
	ID          string
	UserID      string
	RecipeID    string
	RecipeTitle string
	MealDate    string
	MessageBody string
}

// Reader answers the read-table questions the worker needs each tick.
type Reader interface {
	DueNotifications(ctx context.Context, now time.Time) ([]DueNotification, error)
	PushSubscriptionForUser(ctx context.Context, userID string) (id string, sub push.Subscription, found bool, err error)
}

var backoff = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// Worker is the poll loop that drives push delivery. Interval may be
// set before Run is called; it defaults to 60 seconds.
type Worker struct {
	Interval time.Duration

	reader Reader
	sender push.Sender
	store  eventstore.Store
	log    zerolog.Logger
	now    func() time.Time
	sleep  func(time.Duration)
}

// NewWorker wires the delivery worker's collaborators.
func NewWorker(reader Reader, sender push.Sender, store eventstore.Store, log zerolog.Logger) *Worker {
	return &Worker{
		reader: reader,
		sender: sender,
		store:  store,
		log:    log.With().Str("component", "delivery.worker").Logger(),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Run blocks, polling every Interval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.log.Error().Err(err).Msg("delivery tick failed")
			}
		}
	}
}

// RunOnce drives a single poll-and-deliver pass, exported so callers
// (tests, the gocron scheduler) can trigger it outside the 60s cadence.
func (w *Worker) RunOnce(ctx context.Context) error {
	due, err := w.reader.DueNotifications(ctx, w.now())
	if err != nil {
		return fmt.Errorf("delivery: load due notifications: %w", err)
	}

	for _, n := range due {
		if err := w.deliverOne(ctx, n); err != nil {
			if errors.Is(err, push.ErrRateLimited) {
				w.log.Warn().Msg("rate limited, deferring remainder of batch to next tick")
				return nil
			}
			w.log.Error().Err(err).Str("notification_id", n.ID).Msg("delivery failed")
		}
	}
	return nil
}

func (w *Worker) deliverOne(ctx context.Context, n DueNotification) error {
	subID, sub, found, err := w.reader.PushSubscriptionForUser(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("delivery: lookup subscription for %s: %w", n.UserID, err)
	}
	if !found {
		return w.recordOutcome(ctx, n.ID, events.DeliveryNoSubscription)
	}

	payload := push.Payload{
		Title:    "Meal prep reminder",
		Body:     n.MessageBody,
		DeepLink: fmt.Sprintf("/recipes/%s?mode=cook", n.RecipeID),
		Actions:  push.DefaultActions(),
	}

	var sendErr error
	for attempt := 0; attempt <= len(backoff); attempt++ {
		sendErr = w.sender.Send(ctx, sub, payload)
		if sendErr == nil {
			return w.recordOutcome(ctx, n.ID, events.DeliverySent)
		}
		if errors.Is(sendErr, push.ErrRateLimited) {
			return push.ErrRateLimited
		}
		if errors.Is(sendErr, push.ErrEndpointGone) {
			if err := w.removeSubscription(ctx, subID); err != nil {
				w.log.Warn().Err(err).Str("push_subscription_id", subID).Msg("failed to remove dead subscription")
			}
			return w.recordOutcome(ctx, n.ID, events.DeliveryEndpointInvalid)
		}
		if attempt < len(backoff) {
			w.sleep(backoff[attempt])
		}
	}
	return w.recordOutcome(ctx, n.ID, events.DeliveryFailed)
}

// removeSubscription is the subscription-delete half of the push
// contract: a 410 response means the browser
// endpoint is gone for good, so the worker retires it the same
// event-sourced way it records everything else.
func (w *Worker) removeSubscription(ctx context.Context, subscriptionID string) error {
	sub := aggregate.NewPushSubscription(subscriptionID)
	version, err := aggregate.Rebuild(ctx, w.store, subscriptionID, sub)
	if err != nil {
		return fmt.Errorf("delivery: rebuild push subscription %s: %w", subscriptionID, err)
	}
	if sub.Removed {
		return nil
	}
	event := eventstore.PendingEvent{
		EventName: events.PushSubscriptionRemoved,
		Payload:   events.PushSubscriptionRemovedPayload{Reason: "endpoint_invalid"},
	}
	return w.store.Append(ctx, eventstore.AggregatePushSubscription, subscriptionID, &version, []eventstore.PendingEvent{event})
}

func (w *Worker) recordOutcome(ctx context.Context, notificationID string, status events.DeliveryStatus) error {
	notification := aggregate.NewNotification(notificationID)
	version, err := aggregate.Rebuild(ctx, w.store, notificationID, notification)
	if err != nil {
		return fmt.Errorf("delivery: rebuild notification %s: %w", notificationID, err)
	}

	event := eventstore.PendingEvent{
		EventName: events.ReminderSent,
		Payload:   events.ReminderSentPayload{Status: status, At: w.now()},
	}
	if err := w.store.Append(ctx, eventstore.AggregateNotification, notificationID, &version, []eventstore.PendingEvent{event}); err != nil {
		return fmt.Errorf("delivery: append ReminderSent for %s: %w", notificationID, err)
	}
	return nil
}
