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

// UserStatus is one of the three account lifecycle states.
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// MealPlanningPreferences mirrors the preferences-update contract.
type MealPlanningPreferences struct {
	MaxPrepTimeWeeknight    int
	MaxPrepTimeWeekend      int
	AvoidConsecutiveComplex bool
	CuisineVarietyWeight    float64
	DietaryRestrictions     []string
}

// DefaultMealPlanningPreferences is used when a user has never set any.
func DefaultMealPlanningPreferences() MealPlanningPreferences {
	return MealPlanningPreferences{
		MaxPrepTimeWeeknight:    45,
		MaxPrepTimeWeekend:      120,
		AvoidConsecutiveComplex: true,
		CuisineVarietyWeight:    0.7,
	}
}

// User is the fold target for the User aggregate.
type User struct {
	ID             string
	Email          string
	HashedPassword string
	FirstName      string
	LastName       string
	Status         UserStatus
	IsAdmin        bool
	PremiumBypass  bool
	LastLoginAt    time.Time
	Preferences    MealPlanningPreferences
	Version        int
}

func NewUser(id string) *User {
	return &User{ID: id, Status: UserStatusPending, Preferences: DefaultMealPlanningPreferences()}
}

func (u *User) Apply(event eventstore.Event) error {
	switch event.EventName {
	case events.UserRegistered:
		var p events.UserRegisteredPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		u.Email = p.Email
		u.HashedPassword = p.HashedPassword
		u.FirstName = p.FirstName
		u.LastName = p.LastName
		u.Status = UserStatusPending

	case events.UserRegistrationSucceeded:
		u.Status = UserStatusActive

	case events.UserRegistrationFailed:
		// Terminal for this stream; status left as pending, caller
		// surfaces the reason to the client and the stream is abandoned.

	case events.UserLoggedIn:
		var p events.UserLoggedInPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		u.LastLoginAt = p.At.UTC()

	case events.UserProfileUpdated:
		var p events.UserProfileUpdatedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		u.FirstName = p.FirstName
		u.LastName = p.LastName

	case events.UserSuspended:
		u.Status = UserStatusSuspended

	case events.UserActivated:
		u.Status = UserStatusActive

	case events.UserPremiumBypassToggled:
		var p events.UserPremiumBypassToggledPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		u.PremiumBypass = p.Enabled

	case events.UserPromotedToAdmin:
		u.IsAdmin = true

	case events.UserDemotedFromAdmin:
		u.IsAdmin = false

	case events.UserMealPlanningPreferencesUpdated:
		var p events.UserMealPlanningPreferencesUpdatedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		u.Preferences = MealPlanningPreferences{
			MaxPrepTimeWeeknight:    p.MaxPrepTimeWeeknight,
			MaxPrepTimeWeekend:      p.MaxPrepTimeWeekend,
			AvoidConsecutiveComplex: p.AvoidConsecutiveComplex,
			CuisineVarietyWeight:    p.CuisineVarietyWeight,
			DietaryRestrictions:     p.DietaryRestrictions,
		}

	default:
		return fmt.Errorf("aggregate user: unhandled event %q", event.EventName)
	}

	u.Version = event.Version
	return nil
}
