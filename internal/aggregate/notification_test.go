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

	"github.com/stretchr/testify/assert"

	"github.com/imkitchen/imkitchen/internal/aggregate"
)

// TestNotification_CanTransition covers every edge of the reminder
// state machine, legal and illegal alike.
func TestNotification_CanTransition(t *testing.T) {
	cases := []struct {
		name    string
		current aggregate.NotificationStatus
		target  aggregate.NotificationStatus
		want    bool
	}{
		{"pending->completed", aggregate.NotificationPending, aggregate.NotificationCompleted, true},
		{"sent->completed", aggregate.NotificationSent, aggregate.NotificationCompleted, true},
		{"snoozed->completed", aggregate.NotificationSnoozed, aggregate.NotificationCompleted, false},
		{"pending->dismissed", aggregate.NotificationPending, aggregate.NotificationDismissed, true},
		{"sent->dismissed", aggregate.NotificationSent, aggregate.NotificationDismissed, false},
		{"pending->snoozed", aggregate.NotificationPending, aggregate.NotificationSnoozed, true},
		{"snoozed->snoozed", aggregate.NotificationSnoozed, aggregate.NotificationSnoozed, false},
		{"snoozed->pending", aggregate.NotificationSnoozed, aggregate.NotificationPending, true},
		{"sent->pending (carry-over)", aggregate.NotificationSent, aggregate.NotificationPending, true},
		{"pending->sent", aggregate.NotificationPending, aggregate.NotificationSent, true},
		{"sent->sent", aggregate.NotificationSent, aggregate.NotificationSent, false},
		{"sent->expired (carry-max)", aggregate.NotificationSent, aggregate.NotificationExpired, true},
		{"pending->expired", aggregate.NotificationPending, aggregate.NotificationExpired, false},
		{"completed is terminal", aggregate.NotificationCompleted, aggregate.NotificationCompleted, false},
		{"dismissed is terminal", aggregate.NotificationDismissed, aggregate.NotificationPending, false},
		{"expired is terminal", aggregate.NotificationExpired, aggregate.NotificationPending, false},
		{"any->failed", aggregate.NotificationPending, aggregate.NotificationFailed, true},
		{"sent->failed", aggregate.NotificationSent, aggregate.NotificationFailed, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := aggregate.NewNotification("n1")
			n.Status = tc.current
			assert.Equal(t, tc.want, n.CanTransition(tc.target))
		})
	}
}
