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

package rotation_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/rotation"
)

func TestNew_RejectsZeroFavorites(t *testing.T) {
	_, err := rotation.New(0, time.Now())
	assert.ErrorIs(t, err, rotation.ErrZeroFavorites)
}

func TestRestore_AllowsZeroFavorites(t *testing.T) {
	s := rotation.Restore(events.RotationStateData{CycleNumber: 1, TotalFavoriteCount: 0})
	assert.Equal(t, 0, s.TotalFavoriteCount)
}

func TestMarkUsed_IsIdempotent(t *testing.T) {
	s, err := rotation.New(7, time.Now())
	require.NoError(t, err)

	s.MarkUsed(events.CourseMainCourse, "r1")
	s.MarkUsed(events.CourseMainCourse, "r1")
	s.MarkUsed(events.CourseMainCourse, "r1")

	assert.Equal(t, 1, s.UsedCount(events.CourseMainCourse))
	assert.True(t, s.IsUsed(events.CourseMainCourse, "r1"))
}

func TestShouldResetCycle(t *testing.T) {
	s, err := rotation.New(2, time.Now())
	require.NoError(t, err)

	assert.False(t, s.ShouldResetCycle(events.CourseMainCourse, 2))
	s.MarkUsed(events.CourseMainCourse, "r1")
	assert.False(t, s.ShouldResetCycle(events.CourseMainCourse, 2))
	s.MarkUsed(events.CourseMainCourse, "r2")
	assert.True(t, s.ShouldResetCycle(events.CourseMainCourse, 2))
}

func TestResetCycle_ClearsUsedSetsButKeepsSmoothingSignals(t *testing.T) {
	s, err := rotation.New(2, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	s.MarkUsed(events.CourseMainCourse, "r1")
	s.MarkUsed(events.CourseAppetizer, "a1")
	s.MarkUsed(events.CourseDessert, "d1")
	s.IncrementCuisine("italian")
	s.SetLastComplexMealDate("2025-01-01")

	before := s.CycleNumber
	now := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	s.ResetCycle(now)

	assert.Equal(t, before+1, s.CycleNumber)
	assert.True(t, now.Equal(s.CycleStartedAt))
	assert.Equal(t, 0, s.UsedCount(events.CourseMainCourse))
	assert.Equal(t, 0, s.UsedCount(events.CourseAppetizer))
	assert.Equal(t, 0, s.UsedCount(events.CourseDessert))
	assert.Equal(t, 1, s.CuisineUsageCount["italian"], "cuisine usage count is a smoothing signal, not cleared by a cycle reset")
	assert.Equal(t, "2025-01-01", s.LastComplexMealDate, "last complex meal date is a smoothing signal, not cleared by a cycle reset")
}

func TestResetCourse_OnlyClearsOneCourse(t *testing.T) {
	s, err := rotation.New(2, time.Now())
	require.NoError(t, err)

	s.MarkUsed(events.CourseMainCourse, "r1")
	s.MarkUsed(events.CourseAppetizer, "a1")

	s.ResetCourse(events.CourseAppetizer)

	assert.True(t, s.IsUsed(events.CourseMainCourse, "r1"), "scoped reset must not touch other courses")
	assert.False(t, s.IsUsed(events.CourseAppetizer, "a1"))
}

type fakeRecipe struct{ id string }

func (f fakeRecipe) RecipeID() string { return f.id }

func TestFilterAvailable_ExcludesUsed(t *testing.T) {
	s, err := rotation.New(3, time.Now())
	require.NoError(t, err)

	s.MarkUsed(events.CourseMainCourse, "r2")

	all := []fakeRecipe{{"r1"}, {"r2"}, {"r3"}}
	avail := rotation.FilterAvailable(s, all, events.CourseMainCourse)

	ids := make([]string, len(avail))
	for i, r := range avail {
		ids[i] = r.id
	}
	assert.ElementsMatch(t, []string{"r1", "r3"}, ids)
}

func TestJSONRoundTrip(t *testing.T) {
	s, err := rotation.New(5, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	s.MarkUsed(events.CourseMainCourse, "r1")
	s.IncrementCuisine("mexican")
	s.SetLastComplexMealDate("2025-03-01")

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored rotation.State
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.True(t, restored.IsUsed(events.CourseMainCourse, "r1"))
	assert.Equal(t, 1, restored.CuisineUsageCount["mexican"])
	assert.Equal(t, "2025-03-01", restored.LastComplexMealDate)
	assert.Equal(t, 5, restored.TotalFavoriteCount)
}

func TestJSONRoundTrip_EmptyStateIsLegal(t *testing.T) {
	s := rotation.Restore(events.RotationStateData{})
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored rotation.State
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, 0, restored.TotalFavoriteCount)
	assert.Equal(t, 0, restored.UsedCount(events.CourseMainCourse))
}
