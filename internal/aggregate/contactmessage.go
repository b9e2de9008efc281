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

// ContactMessageStatus is the inbox lifecycle state.
type ContactMessageStatus string

const (
	ContactMessageNew      ContactMessageStatus = "new"
	ContactMessageReadSt   ContactMessageStatus = "read"
	ContactMessageResolved ContactMessageStatus = "resolved"
)

type ContactMessage struct {
	ID      string
	Name    string
	Email   string
	Subject string
	Body    string
	Status  ContactMessageStatus
	Version int
}

func NewContactMessage(id string) *ContactMessage {
	return &ContactMessage{ID: id, Status: ContactMessageNew}
}

func (c *ContactMessage) Apply(event eventstore.Event) error {
	switch event.EventName {
	case events.ContactMessageSubmitted:
		var p events.ContactMessageSubmittedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		c.Name = p.Name
		c.Email = p.Email
		c.Subject = p.Subject
		c.Body = p.Body
		c.Status = ContactMessageNew

	case events.ContactMessageRead:
		c.Status = ContactMessageReadSt

	case events.ContactMessageResolved:
		c.Status = ContactMessageResolved

	default:
		return fmt.Errorf("aggregate contactmessage: unhandled event %q", event.EventName)
	}

	c.Version = event.Version
	return nil
}
