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

package aggregate

import (
	"fmt"
	"time"

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
)

// NotificationStatus is a reminder's state-machine state.
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationSnoozed   NotificationStatus = "snoozed"
	NotificationDismissed NotificationStatus = "dismissed"
	NotificationCompleted NotificationStatus = "completed"
	NotificationExpired   NotificationStatus = "expired"
	NotificationFailed    NotificationStatus = "failed"
)

// Notification is the fold target for the Notification aggregate.
type Notification struct {
	ID               string
	UserID           string
	RecipeID         string
	MealDate         string
	ScheduledTime    time.Time
	ReminderType     events.ReminderType
	PrepHours        int
	PrepTask         string
	MessageBody      string
	Status           NotificationStatus
	SnoozedUntil     time.Time
	ReminderCount    int
	MaxReminderCount int
	Version          int
}

func NewNotification(id string) *Notification {
	return &Notification{ID: id, Status: NotificationPending, MaxReminderCount: 3}
}

func (n *Notification) Apply(event eventstore.Event) error {
	switch event.EventName {
	case events.ReminderScheduled:
		var p events.ReminderScheduledPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		n.UserID = p.UserID
		n.RecipeID = p.RecipeID
		n.MealDate = p.MealDate
		n.ScheduledTime = p.ScheduledTime
		n.ReminderType = p.ReminderType
		n.PrepHours = p.PrepHours
		n.PrepTask = p.PrepTask
		n.MessageBody = p.MessageBody
		n.MaxReminderCount = p.MaxReminderCount
		if n.MaxReminderCount == 0 {
			n.MaxReminderCount = 3
		}
		n.Status = NotificationPending

	case events.ReminderSent:
		var p events.ReminderSentPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		switch p.Status {
		case events.DeliverySent:
			n.Status = NotificationSent
		case events.DeliveryFailed, events.DeliveryEndpointInvalid, events.DeliveryNoSubscription:
			n.Status = NotificationFailed
		}

	case events.ReminderCompleted:
		n.Status = NotificationCompleted

	case events.ReminderDismissed:
		n.Status = NotificationDismissed

	case events.ReminderSnoozed:
		var p events.ReminderSnoozedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		n.Status = NotificationSnoozed
		n.SnoozedUntil = p.SnoozedUntil

	case events.ReminderUnsnoozed:
		n.Status = NotificationPending

	case events.ReminderCarriedOver:
		var p events.ReminderCarriedOverPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		n.Status = NotificationPending
		n.ScheduledTime = p.NewScheduledTime
		n.ReminderCount = p.ReminderCount

	case events.ReminderExpired:
		n.Status = NotificationExpired

	default:
		return fmt.Errorf("aggregate notification: unhandled event %q", event.EventName)
	}

	n.Version = event.Version
	return nil
}

// CanTransition reports whether the given target status is reachable
// from the notification's current status. It is
// a pure check used by command handlers before appending the event that
// performs the transition.
func (n *Notification) CanTransition(target NotificationStatus) bool {
	switch target {
	case NotificationCompleted:
		return n.Status == NotificationPending || n.Status == NotificationSent
	case NotificationDismissed:
		return n.Status == NotificationPending
	case NotificationSnoozed:
		return n.Status == NotificationPending
	case NotificationPending:
		return n.Status == NotificationSnoozed || n.Status == NotificationSent
	case NotificationSent:
		return n.Status == NotificationPending
	case NotificationExpired:
		return n.Status == NotificationSent
	case NotificationFailed:
		return true
	default:
		return false
	}
}
