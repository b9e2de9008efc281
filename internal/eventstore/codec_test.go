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

package eventstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
)

// TestPayloadRoundTrip: encoding then
// decoding any event payload yields the original, including the zero
// values round-trippability demands of an omitempty msgpack field.
func TestPayloadRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		out  interface{}
	}{
		{
			name: "MultiWeekMealPlanGeneratedPayload",
			in: events.MultiWeekMealPlanGeneratedPayload{
				UserID:            "user-1",
				GenerationBatchID: "batch-1",
				Weeks: []events.WeekPlanData{
					{
						WeekID:    "week-1",
						StartDate: "2025-10-27",
						EndDate:   "2025-11-02",
						IsLocked:  true,
						Assignments: []events.MealAssignmentData{
							{Date: "2025-10-27", CourseType: events.CourseMainCourse, RecipeID: "r1", PrepRequired: true},
						},
					},
				},
				MaxWeeksPossible: 5,
				RotationState: events.RotationStateData{
					CycleNumber:        1,
					UsedMainCourseIDs:  []string{"r1"},
					CuisineUsageCount:  map[string]int{"italian": 2},
					TotalFavoriteCount: 21,
				},
			},
			out: &events.MultiWeekMealPlanGeneratedPayload{},
		},
		{
			name: "ReminderScheduledPayload with zero optional fields",
			in: events.ReminderScheduledPayload{
				UserID:           "user-1",
				RecipeID:         "recipe-1",
				MealDate:         "2025-10-23",
				ScheduledTime:    time.Date(2025, 10, 22, 9, 0, 0, 0, time.UTC),
				ReminderType:     events.ReminderAdvancePrep,
				PrepHours:        24,
				MaxReminderCount: 3,
			},
			out: &events.ReminderScheduledPayload{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := eventstore.EncodePayload(tc.in)
			require.NoError(t, err)

			err = eventstore.DecodePayload(encoded, tc.out)
			require.NoError(t, err)

			reencoded, err := eventstore.EncodePayload(tc.out)
			require.NoError(t, err)
			assert.Equal(t, encoded, reencoded, "round-tripped payload must re-encode identically")
		})
	}
}

func TestDecodePayload_CorruptDataIsFatal(t *testing.T) {
	var out events.ReminderScheduledPayload
	err := eventstore.DecodePayload([]byte{0xff, 0xff, 0xff}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, eventstore.ErrDecode)
}
