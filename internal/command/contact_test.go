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

package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/command"
	"github.com/imkitchen/imkitchen/internal/email"
	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/testdb"
)

type recordingMailer struct {
	sent []email.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg email.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func newContactService(t *testing.T, mailer email.Mailer) (*command.ContactService, eventstore.Store) {
	t.Helper()
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	svc := command.NewContactService(store, mailer, "admin@example.com", zerolog.Nop())
	return svc, store
}

func TestContactService_SubmitAppendsAndMails(t *testing.T) {
	mailer := &recordingMailer{}
	svc, store := newContactService(t, mailer)

	id, err := svc.Submit(context.Background(), "Ada", "ada@example.com", "Feature request", "More cuisines please")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	loaded, err := store.Load(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, loaded.Events, 1)
	assert.Equal(t, events.ContactMessageSubmitted, loaded.Events[0].EventName)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "admin@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "Feature request")
}

// TestContactService_MailFailureDoesNotAbortSubmission covers the
// never-abort rule for the notification email: the message stream still
// exists even when the mailer errors.
func TestContactService_MailFailureDoesNotAbortSubmission(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	svc, store := newContactService(t, mailer)

	id, err := svc.Submit(context.Background(), "Ada", "ada@example.com", "Hello", "Body")
	require.NoError(t, err)

	_, err = store.Load(context.Background(), id)
	assert.NoError(t, err)
}

func TestContactService_SubmitRejectsMissingFields(t *testing.T) {
	svc, _ := newContactService(t, &recordingMailer{})

	_, err := svc.Submit(context.Background(), "Ada", "", "Subject", "Body")
	assert.ErrorIs(t, err, command.ErrInvalidInput)

	_, err = svc.Submit(context.Background(), "Ada", "ada@example.com", "  ", "Body")
	assert.ErrorIs(t, err, command.ErrInvalidInput)
}

func TestContactService_Lifecycle(t *testing.T) {
	svc, _ := newContactService(t, &recordingMailer{})
	ctx := context.Background()

	id, err := svc.Submit(ctx, "Ada", "ada@example.com", "Subject", "Body")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, id))

	// new -> read happened; a second read is invalid.
	assert.ErrorIs(t, svc.MarkRead(ctx, id), command.ErrInvalidTransition)

	require.NoError(t, svc.Resolve(ctx, id))
	assert.ErrorIs(t, svc.Resolve(ctx, id), command.ErrInvalidTransition)
}
