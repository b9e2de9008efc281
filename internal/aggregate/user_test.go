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

package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/aggregate"
	"github.com/imkitchen/imkitchen/internal/events"
)

func TestUser_Apply_RegistrationLifecycle(t *testing.T) {
	u := aggregate.NewUser("u1")
	assert.Equal(t, aggregate.UserStatusPending, u.Status, "NewUser starts pending before any event")

	require.NoError(t, u.Apply(buildEvent(t, 1, events.UserRegistered, events.UserRegisteredPayload{
		Email: "a@example.com", HashedPassword: "hash", FirstName: "A", LastName: "B",
	})))
	assert.Equal(t, aggregate.UserStatusPending, u.Status)
	assert.Equal(t, "a@example.com", u.Email)

	require.NoError(t, u.Apply(buildEvent(t, 2, events.UserRegistrationSucceeded, events.UserRegistrationSucceededPayload{})))
	assert.Equal(t, aggregate.UserStatusActive, u.Status)
}

func TestUser_Apply_SuspendAndReactivate(t *testing.T) {
	u := aggregate.NewUser("u1")
	require.NoError(t, u.Apply(buildEvent(t, 1, events.UserSuspended, events.UserSuspendedPayload{Reason: "abuse"})))
	assert.Equal(t, aggregate.UserStatusSuspended, u.Status)

	require.NoError(t, u.Apply(buildEvent(t, 2, events.UserActivated, events.UserActivatedPayload{})))
	assert.Equal(t, aggregate.UserStatusActive, u.Status)
}

func TestUser_Apply_AdminAndPremiumToggles(t *testing.T) {
	u := aggregate.NewUser("u1")
	require.NoError(t, u.Apply(buildEvent(t, 1, events.UserPromotedToAdmin, events.UserPromotedToAdminPayload{})))
	assert.True(t, u.IsAdmin)

	require.NoError(t, u.Apply(buildEvent(t, 2, events.UserDemotedFromAdmin, events.UserDemotedFromAdminPayload{})))
	assert.False(t, u.IsAdmin)

	require.NoError(t, u.Apply(buildEvent(t, 3, events.UserPremiumBypassToggled, events.UserPremiumBypassToggledPayload{Enabled: true})))
	assert.True(t, u.PremiumBypass)
}

func TestUser_Apply_MealPlanningPreferencesUpdated(t *testing.T) {
	u := aggregate.NewUser("u1")
	require.NoError(t, u.Apply(buildEvent(t, 1, events.UserMealPlanningPreferencesUpdated, events.UserMealPlanningPreferencesUpdatedPayload{
		MaxPrepTimeWeeknight:    90,
		MaxPrepTimeWeekend:      200,
		AvoidConsecutiveComplex: false,
		CuisineVarietyWeight:    0.9,
		DietaryRestrictions:     []string{"vegan"},
	})))
	assert.Equal(t, 90, u.Preferences.MaxPrepTimeWeeknight)
	assert.Equal(t, []string{"vegan"}, u.Preferences.DietaryRestrictions)
}

func TestUser_Apply_LoginRecordsTimestamp(t *testing.T) {
	u := aggregate.NewUser("u1")
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, u.Apply(buildEvent(t, 1, events.UserLoggedIn, events.UserLoggedInPayload{At: at})))
	assert.Equal(t, at, u.LastLoginAt)
}

func TestUser_Apply_UnknownEventIsFatal(t *testing.T) {
	u := aggregate.NewUser("u1")
	err := u.Apply(buildEvent(t, 1, "NotARealEvent", struct{}{}))
	assert.Error(t, err)
}
