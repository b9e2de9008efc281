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

package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/query"
	"github.com/imkitchen/imkitchen/internal/store"
	"github.com/imkitchen/imkitchen/internal/testdb"
)

func seedUser(t *testing.T, db *store.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, email, first_name, last_name, status, updated_at) VALUES (?, ?, 'A', 'B', 'active', ?)`,
		id, id+"@example.com", time.Now())
	require.NoError(t, err)
}

func seedFavoriteRecipe(t *testing.T, db *store.DB, id, userID string, recipeType events.RecipeType) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO recipes (id, user_id, title, recipe_type, prep_minutes, cook_minutes, is_favorite, updated_at)
		VALUES (?, ?, ?, ?, 10, 20, TRUE, ?)`,
		id, userID, id, string(recipeType), time.Now())
	require.NoError(t, err)
}

func TestReader_FavoriteRecipes_ExcludesNonFavoritesAndDeleted(t *testing.T) {
	db := testdb.Open(t)
	seedUser(t, db, "user-1")
	seedFavoriteRecipe(t, db, "r1", "user-1", events.RecipeTypeMainCourse)
	_, err := db.Exec(`INSERT INTO recipes (id, user_id, title, recipe_type, prep_minutes, cook_minutes, is_favorite, updated_at)
		VALUES ('r2', 'user-1', 'r2', 'main_course', 10, 20, FALSE, ?)`, time.Now())
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO recipes (id, user_id, title, recipe_type, prep_minutes, cook_minutes, is_favorite, deleted, updated_at)
		VALUES ('r3', 'user-1', 'r3', 'main_course', 10, 20, TRUE, TRUE, ?)`, time.Now())
	require.NoError(t, err)

	reader := query.NewReader(db)
	recipes, err := reader.FavoriteRecipes(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "r1", recipes[0].ID)
	assert.Equal(t, 30, recipes[0].TotalMinutes)
}

func TestReader_MealPlanningPreferences_DefaultsWhenUserMissing(t *testing.T) {
	db := testdb.Open(t)
	reader := query.NewReader(db)

	prefs, err := reader.MealPlanningPreferences(context.Background(), "ghost")
	require.NoError(t, err)
	assert.NotZero(t, prefs.MaxPrepTimeWeeknight)
}

func TestReader_RotationState_NilWhenAbsent(t *testing.T) {
	db := testdb.Open(t)
	seedUser(t, db, "user-1")
	reader := query.NewReader(db)

	state, err := reader.RotationState(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestReader_WeekOwnerAndStatus(t *testing.T) {
	db := testdb.Open(t)
	seedUser(t, db, "user-1")
	_, err := db.Exec(`INSERT INTO meal_plans (week_id, user_id, generation_batch_id, start_date, end_date, is_locked, updated_at)
		VALUES ('week-1', 'user-1', 'batch-1', '2030-01-07', '2030-01-13', FALSE, ?)`, time.Now())
	require.NoError(t, err)

	reader := query.NewReader(db)
	owner, start, locked, found, err := reader.WeekOwnerAndStatus(context.Background(), "week-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "user-1", owner)
	assert.Equal(t, "2030-01-07", start)
	assert.False(t, locked)

	_, _, _, found, err = reader.WeekOwnerAndStatus(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReader_ListWeeksForUser_ExcludesArchivedByDefault(t *testing.T) {
	db := testdb.Open(t)
	seedUser(t, db, "user-1")
	_, err := db.Exec(`INSERT INTO meal_plans (week_id, user_id, generation_batch_id, start_date, end_date, status, updated_at)
		VALUES ('week-1', 'user-1', 'batch-1', '2030-01-07', '2030-01-13', 'active', ?)`, time.Now())
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO meal_plans (week_id, user_id, generation_batch_id, start_date, end_date, status, updated_at)
		VALUES ('week-2', 'user-1', 'batch-0', '2029-12-31', '2030-01-06', 'archived', ?)`, time.Now())
	require.NoError(t, err)

	reader := query.NewReader(db)

	active, err := reader.ListWeeksForUser(context.Background(), "user-1", false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "week-1", active[0].WeekID)

	all, err := reader.ListWeeksForUser(context.Background(), "user-1", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReader_GetRotationProgress_DefaultsToCycleOneWhenAbsent(t *testing.T) {
	db := testdb.Open(t)
	seedUser(t, db, "user-1")
	reader := query.NewReader(db)

	progress, err := reader.GetRotationProgress(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CycleNumber)
}

func TestReader_AssignmentsOnDate_OnlyPrepRequired(t *testing.T) {
	db := testdb.Open(t)
	seedUser(t, db, "user-1")
	_, err := db.Exec(`INSERT INTO recipes (id, user_id, title, recipe_type, prep_minutes, cook_minutes, advance_prep_hours, updated_at)
		VALUES ('r1', 'user-1', 'Lasagna', 'main_course', 10, 20, 24, ?)`, time.Now())
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO meal_plans (week_id, user_id, generation_batch_id, start_date, end_date, updated_at)
		VALUES ('week-1', 'user-1', 'batch-1', '2025-10-20', '2025-10-26', ?)`, time.Now())
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO meal_assignments (week_id, date, course_type, recipe_id, prep_required)
		VALUES ('week-1', '2025-10-23', 'main_course', 'r1', TRUE)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO meal_assignments (week_id, date, course_type, recipe_id, prep_required)
		VALUES ('week-1', '2025-10-23', 'appetizer', 'r1', FALSE)`)
	require.NoError(t, err)

	reader := query.NewReader(db)
	due, err := reader.AssignmentsOnDate(context.Background(), "2025-10-23")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "r1", due[0].RecipeID)
	assert.Equal(t, 24, due[0].AdvancePrepHours)
}

func TestReader_PendingPrepTasks_ExcludesTerminalStates(t *testing.T) {
	db := testdb.Open(t)
	seedUser(t, db, "user-1")
	for i, status := range []string{"pending", "sent", "snoozed", "completed", "dismissed", "expired", "failed"} {
		_, err := db.Exec(`
			INSERT INTO notifications (id, user_id, meal_assignment_week_id, meal_assignment_date, reminder_type, status, scheduled_time, updated_at)
			VALUES (?, 'user-1', '', '2025-10-23', 'advance_prep', ?, ?, ?)`,
			string(rune('a'+i)), status, time.Date(2025, 10, 22, 9, 0, 0, 0, time.UTC).Add(time.Duration(i)*time.Minute), time.Now())
		require.NoError(t, err)
	}

	reader := query.NewReader(db)
	tasks, err := reader.PendingPrepTasks(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	// soonest scheduled first
	assert.Equal(t, "a", tasks[0].NotificationID)
	for _, task := range tasks {
		assert.Contains(t, []string{"pending", "sent", "snoozed"}, task.Status)
	}
}

func TestReader_DashboardMealsForDate_ServingOrder(t *testing.T) {
	db := testdb.Open(t)
	seedUser(t, db, "user-1")
	for _, course := range []string{"dessert", "appetizer", "main_course"} {
		_, err := db.Exec(`
			INSERT INTO dashboard_meals (user_id, date, course_type, recipe_id, recipe_title, prep_required, week_id)
			VALUES ('user-1', '2025-10-23', ?, ?, ?, FALSE, 'week-1')`,
			course, "r-"+course, "Title "+course)
		require.NoError(t, err)
	}

	reader := query.NewReader(db)
	meals, err := reader.DashboardMealsForDate(context.Background(), "user-1", "2025-10-23")
	require.NoError(t, err)
	require.Len(t, meals, 3)
	assert.Equal(t, events.CourseAppetizer, meals[0].CourseType)
	assert.Equal(t, events.CourseMainCourse, meals[1].CourseType)
	assert.Equal(t, events.CourseDessert, meals[2].CourseType)
}

func TestReader_GetDashboardMetrics_DefaultsWhenAbsent(t *testing.T) {
	db := testdb.Open(t)
	reader := query.NewReader(db)

	metrics, err := reader.GetDashboardMetrics(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.TotalWeeksPlanned)
	assert.Equal(t, 0, metrics.TotalFavorites)
	assert.Equal(t, 1, metrics.CurrentCycleNumber)
}

func TestReader_PushSubscriptionForUser_ExcludesRemoved(t *testing.T) {
	db := testdb.Open(t)
	seedUser(t, db, "user-1")
	_, err := db.Exec(`INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, removed, updated_at)
		VALUES ('sub-1', 'user-1', 'https://push.example/old', 'p', 'a', TRUE, ?)`, time.Now())
	require.NoError(t, err)

	reader := query.NewReader(db)
	_, _, found, err := reader.PushSubscriptionForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = db.Exec(`INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, removed, updated_at)
		VALUES ('sub-2', 'user-1', 'https://push.example/new', 'p', 'a', FALSE, ?)`, time.Now())
	require.NoError(t, err)

	id, sub, found, err := reader.PushSubscriptionForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sub-2", id)
	assert.Equal(t, "https://push.example/new", sub.Endpoint)
}
