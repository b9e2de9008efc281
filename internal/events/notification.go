package events

import "time"

const (
	ReminderScheduled = "ReminderScheduled"
	ReminderSent      = "ReminderSent"
	ReminderCompleted = "ReminderCompleted"
	ReminderDismissed = "ReminderDismissed"
	ReminderSnoozed   = "ReminderSnoozed"
	ReminderUnsnoozed = "ReminderUnsnoozed"
	ReminderCarriedOver = "ReminderCarriedOver"
	ReminderExpired   = "ReminderExpired"
)

// ReminderType classifies how far ahead of the meal a reminder fires.
type ReminderType string

const (
	ReminderAdvancePrep ReminderType = "advance_prep"
	ReminderMorning     ReminderType = "morning"
	ReminderDayOf       ReminderType = "day_of"
)

// DeliveryStatus is the outcome the delivery worker assigns to one attempt.
type DeliveryStatus string

const (
	DeliverySent            DeliveryStatus = "sent"
	DeliveryFailed          DeliveryStatus = "failed"
	DeliveryNoSubscription  DeliveryStatus = "no_subscription"
	DeliveryEndpointInvalid DeliveryStatus = "endpoint_invalid"
)

// ReminderScheduledPayload starts a Notification stream.
type ReminderScheduledPayload struct {
	UserID           string       `msgpack:"user_id"`
	RecipeID         string       `msgpack:"recipe_id"`
	MealDate         string       `msgpack:"meal_date"` // ISO 8601
	ScheduledTime    time.Time    `msgpack:"scheduled_time"`
	ReminderType     ReminderType `msgpack:"reminder_type"`
	PrepHours        int          `msgpack:"prep_hours"`
	PrepTask         string       `msgpack:"prep_task,omitempty"`
	MessageBody      string       `msgpack:"message_body"`
	MaxReminderCount int          `msgpack:"max_reminder_count"`
}

type ReminderSentPayload struct {
	Status DeliveryStatus `msgpack:"status"`
	At     time.Time      `msgpack:"at"`
}

type ReminderCompletedPayload struct {
	At time.Time `msgpack:"at"`
}

type ReminderDismissedPayload struct {
	At     time.Time `msgpack:"at"`
	Reason string    `msgpack:"reason,omitempty"` // "user" or "expired_window"
}

type ReminderSnoozedPayload struct {
	SnoozedUntil time.Time `msgpack:"snoozed_until"`
}

type ReminderUnsnoozedPayload struct {
	At time.Time `msgpack:"at"`
}

// ReminderCarriedOverPayload bumps reminder_count and reschedules for
// tomorrow 09:00; when reminder_count reaches max, ReminderExpired fires
// instead.
type ReminderCarriedOverPayload struct {
	NewScheduledTime time.Time `msgpack:"new_scheduled_time"`
	ReminderCount    int       `msgpack:"reminder_count"`
}

type ReminderExpiredPayload struct {
	At time.Time `msgpack:"at"`
}
