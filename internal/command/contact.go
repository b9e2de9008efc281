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

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/aggregate"
	"github.com/imkitchen/imkitchen/internal/email"
	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
)

// ContactService implements the contact-message lifecycle: a public
// submission opens a new stream, and an admin walks it new → read →
// resolved. The notification email on submit is best-effort — a mail
// failure is logged and the submission still stands (the same
// never-abort rule the shopping-list collaborator follows).
type ContactService struct {
	store      eventstore.Store
	mailer     email.Mailer
	adminEmail string
	log        zerolog.Logger
}

// NewContactService wires the command's collaborators. mailer may be
// nil and adminEmail may be empty, in which case no email is attempted.
func NewContactService(store eventstore.Store, mailer email.Mailer, adminEmail string, log zerolog.Logger) *ContactService {
	return &ContactService{
		store:      store,
		mailer:     mailer,
		adminEmail: adminEmail,
		log:        log.With().Str("component", "command.contact").Logger(),
	}
}

// Submit opens a contact-message stream and fires the admin notification
// email. Returns the new message's id.
func (s *ContactService) Submit(ctx context.Context, name, emailAddr, subject, body string) (string, error) {
	if strings.TrimSpace(emailAddr) == "" || strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("%w: email, subject and body are required", ErrInvalidInput)
	}

	payload := events.ContactMessageSubmittedPayload{
		Name:    name,
		Email:   emailAddr,
		Subject: subject,
		Body:    body,
	}
	id, err := s.store.Create(ctx, eventstore.AggregateContactMessage, eventstore.PendingEvent{
		EventName: events.ContactMessageSubmitted,
		Payload:   payload,
	})
	if err != nil {
		return "", fmt.Errorf("command: submit contact message: %w", err)
	}

	if s.mailer != nil && s.adminEmail != "" {
		msg := email.Message{
			To:      s.adminEmail,
			Subject: fmt.Sprintf("New contact message: %s", subject),
			Body:    fmt.Sprintf("From %s <%s>:\n\n%s", name, emailAddr, body),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.log.Warn().Err(err).Str("contact_message_id", id).Msg("contact notification email failed, message still recorded")
		}
	}

	return id, nil
}

// MarkRead transitions a message new → read.
func (s *ContactService) MarkRead(ctx context.Context, messageID string) error {
	return s.transitionContact(ctx, messageID, aggregate.ContactMessageReadSt, eventstore.PendingEvent{
		EventName: events.ContactMessageRead,
		Payload:   events.ContactMessageReadPayload{},
	})
}

// Resolve transitions a message to resolved, from new or read.
func (s *ContactService) Resolve(ctx context.Context, messageID string) error {
	return s.transitionContact(ctx, messageID, aggregate.ContactMessageResolved, eventstore.PendingEvent{
		EventName: events.ContactMessageResolved,
		Payload:   events.ContactMessageResolvedPayload{},
	})
}

func (s *ContactService) transitionContact(ctx context.Context, messageID string, target aggregate.ContactMessageStatus, pending eventstore.PendingEvent) error {
	state := aggregate.NewContactMessage(messageID)
	version, err := aggregate.Rebuild(ctx, s.store, messageID, state)
	if err != nil {
		return fmt.Errorf("command: rebuild contact message: %w", err)
	}

	switch target {
	case aggregate.ContactMessageReadSt:
		if state.Status != aggregate.ContactMessageNew {
			return ErrInvalidTransition
		}
	case aggregate.ContactMessageResolved:
		if state.Status == aggregate.ContactMessageResolved {
			return ErrInvalidTransition
		}
	}

	if err := s.store.Append(ctx, eventstore.AggregateContactMessage, messageID, &version, []eventstore.PendingEvent{pending}); err != nil {
		return fmt.Errorf("command: append %s: %w", pending.EventName, err)
	}
	return nil
}
