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
	"time"

	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/aggregate"
	"github.com/imkitchen/imkitchen/internal/auth"
	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/store"
)

// EmailRegistry is the append-only uniqueness guard the Register command
// consults directly — the one read table a command writes to itself
// rather than through a projection handler.
type EmailRegistry interface {
	Reserve(ctx context.Context, email, userID string, at time.Time) error
}

// UserCredentialsReader resolves the credentials Login checks, from the
// users read table.
type UserCredentialsReader interface {
	UserByEmail(ctx context.Context, email string) (userID, hashedPassword string, status aggregate.UserStatus, found bool, err error)
}

// UserService implements the account Register/Login commands.
type UserService struct {
	store       eventstore.Store
	emails      EmailRegistry
	credentials UserCredentialsReader
	hasher      *auth.Hasher
	issuer      *auth.SessionIssuer
	log         zerolog.Logger
	now         func() time.Time
}

// NewUserService wires the command's collaborators.
func NewUserService(store eventstore.Store, emails EmailRegistry, credentials UserCredentialsReader, hasher *auth.Hasher, issuer *auth.SessionIssuer, log zerolog.Logger) *UserService {
	return &UserService{
		store:       store,
		emails:      emails,
		credentials: credentials,
		hasher:      hasher,
		issuer:      issuer,
		log:         log.With().Str("component", "command.user").Logger(),
		now:         time.Now,
	}
}

// Register creates a new user stream in status=pending, then
// immediately succeeds it — the registration flow has no email
// verification step, so the two events fire back to back within the
// same call rather than waiting on an external confirmation.
func (s *UserService) Register(ctx context.Context, email, password, firstName, lastName string) (userID string, err error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("command: hash password: %w", err)
	}

	registered := eventstore.PendingEvent{
		EventName: events.UserRegistered,
		Payload: events.UserRegisteredPayload{
			Email:          email,
			HashedPassword: hashed,
			FirstName:      firstName,
			LastName:       lastName,
		},
	}
	userID, err = s.store.Create(ctx, eventstore.AggregateUser, registered)
	if err != nil {
		return "", fmt.Errorf("command: create user stream: %w", err)
	}

	if err := s.emails.Reserve(ctx, email, userID, s.now()); err != nil {
		failed := int(1)
		_ = s.store.Append(ctx, eventstore.AggregateUser, userID, &failed, []eventstore.PendingEvent{{
			EventName: events.UserRegistrationFailed,
			Payload:   events.UserRegistrationFailedPayload{Reason: "email_already_registered"},
		}})
		return "", ErrEmailAlreadyRegistered
	}

	succeeded := int(1)
	if err := s.store.Append(ctx, eventstore.AggregateUser, userID, &succeeded, []eventstore.PendingEvent{{
		EventName: events.UserRegistrationSucceeded,
		Payload:   events.UserRegistrationSucceededPayload{},
	}}); err != nil {
		return "", fmt.Errorf("command: append registration succeeded: %w", err)
	}

	return userID, nil
}

// Login verifies credentials and, on success, appends UserLoggedIn and
// returns a signed session token. A nonexistent email and a wrong
// password report the same error so a caller cannot distinguish them.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	userID, hashedPassword, status, found, err := s.credentials.UserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("command: lookup user by email: %w", err)
	}
	if !found || status != aggregate.UserStatusActive {
		return "", auth.ErrPasswordMismatch
	}
	if err := s.hasher.Verify(password, hashedPassword); err != nil {
		return "", err
	}

	version := 0
	loaded, err := s.store.Load(ctx, userID)
	if err == nil {
		version = loaded.CurrentVersion
	}
	expected := version
	if err := s.store.Append(ctx, eventstore.AggregateUser, userID, &expected, []eventstore.PendingEvent{{
		EventName: events.UserLoggedIn,
		Payload:   events.UserLoggedInPayload{At: s.now()},
	}}); err != nil {
		return "", fmt.Errorf("command: append login: %w", err)
	}

	return s.issuer.Issue(auth.Claims{UserID: userID, Email: email})
}

// UpdatePreferences appends UserMealPlanningPreferencesUpdated for the
// PUT /profile/meal-planning-preferences contract. The
// numeric/weight bounds are re-checked here, not just at the HTTP
// binding layer, so a directly-issued command can't smuggle in an
// invalid state.
func (s *UserService) UpdatePreferences(ctx context.Context, userID string, prefs events.UserMealPlanningPreferencesUpdatedPayload) error {
	if prefs.MaxPrepTimeWeeknight <= 0 || prefs.MaxPrepTimeWeekend <= 0 {
		return fmt.Errorf("%w: max prep times must be positive", ErrInvalidInput)
	}
	if prefs.CuisineVarietyWeight < 0 || prefs.CuisineVarietyWeight > 1 {
		return fmt.Errorf("%w: cuisine_variety_weight must be within [0,1]", ErrInvalidInput)
	}

	loaded, err := s.store.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("command: load user stream: %w", err)
	}
	expected := loaded.CurrentVersion

	if err := s.store.Append(ctx, eventstore.AggregateUser, userID, &expected, []eventstore.PendingEvent{{
		EventName: events.UserMealPlanningPreferencesUpdated,
		Payload:   prefs,
		Metadata:  eventstore.Metadata{UserID: userID},
	}}); err != nil {
		return fmt.Errorf("command: append preferences updated: %w", err)
	}
	return nil
}

// SQLEmailRegistry implements EmailRegistry over the user_emails table.
type SQLEmailRegistry struct {
	db *store.DB
}

// NewSQLEmailRegistry wires the registry against the core database.
func NewSQLEmailRegistry(db *store.DB) *SQLEmailRegistry { return &SQLEmailRegistry{db: db} }

func (r *SQLEmailRegistry) Reserve(ctx context.Context, email, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_emails (email, user_id, created_at) VALUES (?, ?, ?)`, email, userID, at)
	if err != nil {
		return ErrEmailAlreadyRegistered
	}
	return nil
}
