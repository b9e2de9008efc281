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

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
)

// PushSubscription is the fold target for one subscribed browser endpoint.
type PushSubscription struct {
	ID        string
	UserID    string
	Endpoint  string
	P256dhKey string
	AuthKey   string
	Removed   bool
	Version   int
}

func NewPushSubscription(id string) *PushSubscription { return &PushSubscription{ID: id} }

func (p *PushSubscription) Apply(event eventstore.Event) error {
	switch event.EventName {
	case events.PushSubscriptionCreated:
		var payload events.PushSubscriptionCreatedPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		p.UserID = payload.UserID
		p.Endpoint = payload.Endpoint
		p.P256dhKey = payload.P256dhKey
		p.AuthKey = payload.AuthKey

	case events.PushSubscriptionRemoved:
		p.Removed = true

	default:
		return fmt.Errorf("aggregate pushsubscription: unhandled event %q", event.EventName)
	}

	p.Version = event.Version
	return nil
}
