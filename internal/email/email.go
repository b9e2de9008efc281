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

// Package email is the thin outbound-mail contract the core needs: a
// contact-form submission fires one notification email, and a failure to
// deliver it is logged, never propagated back into the projection or
// command that triggered it. The SMTP/provider transport itself stays
// out of core — deployments swap LoggingMailer for a real adapter.
package email

import (
	"context"

	"github.com/rs/zerolog"
)

// Message is one outbound notification email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends one message. Implementations must be safe for concurrent
// use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LoggingMailer satisfies Mailer by recording the message instead of
// delivering it — the same stand-in shape as the shopping-list
// collaborator.
type LoggingMailer struct {
	log zerolog.Logger
}

// NewLoggingMailer wires the mailer's logger.
func NewLoggingMailer(log zerolog.Logger) *LoggingMailer {
	return &LoggingMailer{log: log.With().Str("component", "email").Logger()}
}

var _ Mailer = (*LoggingMailer)(nil)

// Send records the message; it never returns an error.
func (m *LoggingMailer) Send(ctx context.Context, msg Message) error {
	m.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("outbound email")
	return nil
}
