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

package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/store"
)

// RegisterUser wires the users read table. Email
// uniqueness is enforced by the command layer writing to user_emails
// directly, before the UserRegistered event is ever appended.
func RegisterUser(sub *Subscription, nowFunc func() time.Time) {
	sub.On(events.UserRegistered, handleUserRegistered(nowFunc))
	sub.On(events.UserRegistrationSucceeded, handleUserStatus("active", nowFunc))
	sub.On(events.UserRegistrationFailed, noopHandler)
	sub.On(events.UserLoggedIn, handleUserLoggedIn(nowFunc))
	sub.On(events.UserProfileUpdated, handleUserProfileUpdated(nowFunc))
	sub.On(events.UserSuspended, handleUserStatus("suspended", nowFunc))
	sub.On(events.UserActivated, handleUserStatus("active", nowFunc))
	sub.On(events.UserPremiumBypassToggled, handleUserPremiumBypassToggled(nowFunc))
	sub.On(events.UserPromotedToAdmin, handleUserAdmin(true, nowFunc))
	sub.On(events.UserDemotedFromAdmin, handleUserAdmin(false, nowFunc))
	sub.On(events.UserMealPlanningPreferencesUpdated, handleUserPreferencesUpdated(nowFunc))
	SkipUnhandled(sub)
}

func noopHandler(ctx context.Context, tx *store.Tx, event eventstore.Event) error { return nil }

func handleUserRegistered(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.UserRegisteredPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (
				id, email, hashed_password, first_name, last_name, status, is_admin, premium_bypass,
				max_prep_time_weeknight, max_prep_time_weekend, avoid_consecutive_complex,
				cuisine_variety_weight, dietary_restrictions, updated_at
			) VALUES (?, ?, ?, ?, ?, 'pending', FALSE, FALSE, 45, 120, TRUE, 0.7, '[]', ?)
			ON CONFLICT (id) DO UPDATE SET
				email = excluded.email, hashed_password = excluded.hashed_password,
				first_name = excluded.first_name, last_name = excluded.last_name,
				status = 'pending', updated_at = excluded.updated_at
		`, event.AggregateID, p.Email, p.HashedPassword, p.FirstName, p.LastName, nowFunc())
		if err != nil {
			return fmt.Errorf("insert user %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleUserStatus(status string, nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		_, err := tx.ExecContext(ctx, `UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
			status, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("set user %s status %s: %w", event.AggregateID, status, err)
		}
		return nil
	}
}

func handleUserLoggedIn(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.UserLoggedInPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
			p.At, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("record login for %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleUserProfileUpdated(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.UserProfileUpdatedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE users SET first_name = ?, last_name = ?, updated_at = ? WHERE id = ?`,
			p.FirstName, p.LastName, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("update profile for %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleUserPremiumBypassToggled(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.UserPremiumBypassToggledPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE users SET premium_bypass = ?, updated_at = ? WHERE id = ?`,
			p.Enabled, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("toggle premium bypass for %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleUserAdmin(isAdmin bool, nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		_, err := tx.ExecContext(ctx, `UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?`,
			isAdmin, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("set admin flag for %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleUserPreferencesUpdated(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.UserMealPlanningPreferencesUpdatedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		restrictions, err := json.Marshal(p.DietaryRestrictions)
		if err != nil {
			return fmt.Errorf("marshal dietary_restrictions: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET
				max_prep_time_weeknight = ?, max_prep_time_weekend = ?,
				avoid_consecutive_complex = ?, cuisine_variety_weight = ?,
				dietary_restrictions = ?, updated_at = ?
			WHERE id = ?
		`, p.MaxPrepTimeWeeknight, p.MaxPrepTimeWeekend, p.AvoidConsecutiveComplex,
			p.CuisineVarietyWeight, string(restrictions), nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("update preferences for %s: %w", event.AggregateID, err)
		}
		return nil
	}
}
