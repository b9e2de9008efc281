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

// Package query implements the read-side facade the command and
// notification collaborators depend on, plus the handful of list/detail
// queries the HTTP layer needs. Every method is a single read-table
// query — nothing here ever touches the event store directly: commands
// replay streams, queries read projections.
package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imkitchen/imkitchen/internal/aggregate"
	"github.com/imkitchen/imkitchen/internal/delivery"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/notifications"
	"github.com/imkitchen/imkitchen/internal/planner"
	"github.com/imkitchen/imkitchen/internal/push"
	"github.com/imkitchen/imkitchen/internal/store"
)

// Reader answers every read-table query the command and notification
// layers need. A single type satisfies all of them since they all read
// the same database — see command.FavoritesReader,
// command.PreferencesReader, command.RotationReader, command.WeekLookup,
// command.NotificationOwnerLookup, command.RecipeOwnerLookup,
// command.UserCredentialsReader, and notifications.RecipeLookup /
// notifications.TickerReader for the individual contracts it fulfills.
type Reader struct {
	db *store.DB
}

// NewReader wires the facade against the core database.
func NewReader(db *store.DB) *Reader { return &Reader{db: db} }

// FavoriteRecipes implements command.FavoritesReader.
func (r *Reader) FavoriteRecipes(ctx context.Context, userID string) ([]planner.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipe_type, prep_minutes, cook_minutes, advance_prep_hours, cuisine,
			dietary_tags, complexity, accepts_accompaniment, preferred_accompaniments, accompaniment_category
		FROM recipes WHERE user_id = ? AND is_favorite = TRUE AND deleted = FALSE
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query: favorite recipes: %w", err)
	}
	defer rows.Close()

	var out []planner.Recipe
	for rows.Next() {
		var (
			id, recipeType, cuisine, dietaryJSON, complexity, accompanimentsJSON, accompanimentCategory string
			prepMinutes, cookMinutes, advancePrepHours                                                   int
			acceptsAccompaniment                                                                         bool
		)
		if err := rows.Scan(&id, &recipeType, &prepMinutes, &cookMinutes, &advancePrepHours, &cuisine,
			&dietaryJSON, &complexity, &acceptsAccompaniment, &accompanimentsJSON, &accompanimentCategory); err != nil {
			return nil, fmt.Errorf("query: scan favorite recipe: %w", err)
		}

		var dietaryTags []string
		if err := json.Unmarshal([]byte(dietaryJSON), &dietaryTags); err != nil {
			return nil, fmt.Errorf("query: unmarshal dietary_tags: %w", err)
		}
		tags := make(map[string]struct{}, len(dietaryTags))
		for _, t := range dietaryTags {
			tags[t] = struct{}{}
		}

		var accompanimentList []events.AccompanimentCategory
		if err := json.Unmarshal([]byte(accompanimentsJSON), &accompanimentList); err != nil {
			return nil, fmt.Errorf("query: unmarshal preferred_accompaniments: %w", err)
		}
		preferred := make(map[events.AccompanimentCategory]struct{}, len(accompanimentList))
		for _, c := range accompanimentList {
			preferred[c] = struct{}{}
		}

		out = append(out, planner.Recipe{
			ID:                      id,
			RecipeType:              events.RecipeType(recipeType),
			DietaryTags:             tags,
			TotalMinutes:            prepMinutes + cookMinutes,
			Complexity:              events.Complexity(complexity),
			Cuisine:                 cuisine,
			AcceptsAccompaniment:    acceptsAccompaniment,
			PreferredAccompaniments: preferred,
			AccompanimentCategory:   events.AccompanimentCategory(accompanimentCategory),
			AdvancePrepHours:        advancePrepHours,
		})
	}
	return out, rows.Err()
}

// MealPlanningPreferences implements command.PreferencesReader.
func (r *Reader) MealPlanningPreferences(ctx context.Context, userID string) (aggregate.MealPlanningPreferences, error) {
	var (
		weeknight, weekend int
		avoidConsecutive   bool
		cuisineWeight      float64
		restrictionsJSON   string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT max_prep_time_weeknight, max_prep_time_weekend, avoid_consecutive_complex,
			cuisine_variety_weight, dietary_restrictions
		FROM users WHERE id = ?
	`, userID).Scan(&weeknight, &weekend, &avoidConsecutive, &cuisineWeight, &restrictionsJSON)
	if err == sql.ErrNoRows {
		return aggregate.DefaultMealPlanningPreferences(), nil
	}
	if err != nil {
		return aggregate.MealPlanningPreferences{}, fmt.Errorf("query: load preferences: %w", err)
	}

	var restrictions []string
	if err := json.Unmarshal([]byte(restrictionsJSON), &restrictions); err != nil {
		return aggregate.MealPlanningPreferences{}, fmt.Errorf("query: unmarshal dietary_restrictions: %w", err)
	}

	return aggregate.MealPlanningPreferences{
		MaxPrepTimeWeeknight:    weeknight,
		MaxPrepTimeWeekend:      weekend,
		AvoidConsecutiveComplex: avoidConsecutive,
		CuisineVarietyWeight:    cuisineWeight,
		DietaryRestrictions:     restrictions,
	}, nil
}

// RotationState implements command.RotationReader.
func (r *Reader) RotationState(ctx context.Context, userID string) (*events.RotationStateData, error) {
	var (
		data                                                                 events.RotationStateData
		cycleStartedAt                                                       time.Time
		usedMainJSON, usedAppJSON, usedDessertJSON, cuisineJSON, lastComplex string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT cycle_number, cycle_started_at, used_main_course_ids, used_appetizer_ids,
			used_dessert_ids, cuisine_usage_count, last_complex_meal_date, total_favorite_count
		FROM meal_plan_rotation_state WHERE user_id = ?
	`, userID).Scan(&data.CycleNumber, &cycleStartedAt, &usedMainJSON, &usedAppJSON,
		&usedDessertJSON, &cuisineJSON, &lastComplex, &data.TotalFavoriteCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query: load rotation state: %w", err)
	}

	data.CycleStartedAt = cycleStartedAt
	data.LastComplexMealDate = lastComplex
	if err := json.Unmarshal([]byte(usedMainJSON), &data.UsedMainCourseIDs); err != nil {
		return nil, fmt.Errorf("query: unmarshal used_main_course_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(usedAppJSON), &data.UsedAppetizerIDs); err != nil {
		return nil, fmt.Errorf("query: unmarshal used_appetizer_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(usedDessertJSON), &data.UsedDessertIDs); err != nil {
		return nil, fmt.Errorf("query: unmarshal used_dessert_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(cuisineJSON), &data.CuisineUsageCount); err != nil {
		return nil, fmt.Errorf("query: unmarshal cuisine_usage_count: %w", err)
	}
	return &data, nil
}

// WeekOwnerAndStatus implements command.WeekLookup.
func (r *Reader) WeekOwnerAndStatus(ctx context.Context, weekID string) (userID, startDate string, isLocked, found bool, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT user_id, start_date, is_locked FROM meal_plans WHERE week_id = ?`, weekID).
		Scan(&userID, &startDate, &isLocked)
	if err == sql.ErrNoRows {
		return "", "", false, false, nil
	}
	if err != nil {
		return "", "", false, false, fmt.Errorf("query: lookup week: %w", err)
	}
	return userID, startDate, isLocked, true, nil
}

// PrepInfo implements notifications.RecipeLookup. prep_task has no
// dedicated column on the recipe — it is left blank, matching the
// optional msgpack tag on ReminderScheduledPayload.PrepTask.
func (r *Reader) PrepInfo(ctx context.Context, recipeID string) (advancePrepHours int, title string, prepTask string, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT advance_prep_hours, title FROM recipes WHERE id = ?`, recipeID).
		Scan(&advancePrepHours, &title)
	if err == sql.ErrNoRows {
		return 0, "", "", nil
	}
	if err != nil {
		return 0, "", "", fmt.Errorf("query: prep info: %w", err)
	}
	return advancePrepHours, title, "", nil
}

// NotificationOwner implements command.NotificationOwnerLookup.
func (r *Reader) NotificationOwner(ctx context.Context, notificationID string) (userID string, found bool, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT user_id FROM notifications WHERE id = ?`, notificationID).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query: notification owner: %w", err)
	}
	return userID, true, nil
}

// RecipeOwner implements command.RecipeOwnerLookup.
func (r *Reader) RecipeOwner(ctx context.Context, recipeID string) (userID string, found bool, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT user_id FROM recipes WHERE id = ? AND deleted = FALSE`, recipeID).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query: recipe owner: %w", err)
	}
	return userID, true, nil
}

// UserByEmail implements command.UserCredentialsReader.
func (r *Reader) UserByEmail(ctx context.Context, email string) (userID, hashedPassword string, status aggregate.UserStatus, found bool, err error) {
	var statusStr string
	err = r.db.QueryRowContext(ctx, `SELECT id, hashed_password, status FROM users WHERE email = ?`, email).
		Scan(&userID, &hashedPassword, &statusStr)
	if err == sql.ErrNoRows {
		return "", "", "", false, nil
	}
	if err != nil {
		return "", "", "", false, fmt.Errorf("query: user by email: %w", err)
	}
	return userID, hashedPassword, aggregate.UserStatus(statusStr), true, nil
}

// AssignmentsOnDate implements notifications.TickerReader.
func (r *Reader) AssignmentsOnDate(ctx context.Context, date string) ([]notifications.DueAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mp.user_id, ma.recipe_id, rc.title, ma.date, ma.course_type, rc.advance_prep_hours
		FROM meal_assignments ma
		JOIN meal_plans mp ON mp.week_id = ma.week_id
		JOIN recipes rc ON rc.id = ma.recipe_id
		WHERE ma.date = ? AND ma.prep_required = TRUE
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query: assignments on date: %w", err)
	}
	defer rows.Close()

	var out []notifications.DueAssignment
	for rows.Next() {
		var a notifications.DueAssignment
		var courseType string
		if err := rows.Scan(&a.UserID, &a.RecipeID, &a.RecipeTitle, &a.MealDate, &courseType, &a.AdvancePrepHours); err != nil {
			return nil, fmt.Errorf("query: scan assignment: %w", err)
		}
		a.CourseType = events.CourseType(courseType)
		out = append(out, a)
	}
	return out, rows.Err()
}

// AlreadyScheduled implements notifications.TickerReader.
func (r *Reader) AlreadyScheduled(ctx context.Context, userID, recipeID, mealDate string, reminderType events.ReminderType) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = ? AND recipe_id = ? AND meal_assignment_date = ? AND reminder_type = ?
	`, userID, recipeID, mealDate, string(reminderType)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query: already scheduled: %w", err)
	}
	return count > 0, nil
}

// SentPastMealDate implements notifications.TickerReader.
func (r *Reader) SentPastMealDate(ctx context.Context, today string) ([]notifications.CarryOverCandidate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, reminder_count, max_reminder_count FROM notifications
		WHERE status = 'sent' AND meal_assignment_date < ?
	`, today)
	if err != nil {
		return nil, fmt.Errorf("query: sent past meal date: %w", err)
	}
	defer rows.Close()

	var out []notifications.CarryOverCandidate
	for rows.Next() {
		var c notifications.CarryOverCandidate
		if err := rows.Scan(&c.ID, &c.ReminderCount, &c.MaxReminderCount); err != nil {
			return nil, fmt.Errorf("query: scan carry-over candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PendingPastMealDate implements notifications.TickerReader.
func (r *Reader) PendingPastMealDate(ctx context.Context, today string) ([]string, error) {
	return r.stringColumn(ctx, `SELECT id FROM notifications WHERE status = 'pending' AND meal_assignment_date < ?`, today)
}

// SnoozedDue implements notifications.TickerReader.
func (r *Reader) SnoozedDue(ctx context.Context, now time.Time) ([]string, error) {
	return r.stringColumn(ctx, `SELECT id FROM notifications WHERE status = 'snoozed' AND snoozed_until <= ?`, now)
}

// DueNotifications implements delivery.Reader.
func (r *Reader) DueNotifications(ctx context.Context, now time.Time) ([]delivery.DueNotification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT n.id, n.user_id, n.recipe_id, COALESCE(rc.title, ''), n.meal_assignment_date, n.message_body
		FROM notifications n
		LEFT JOIN recipes rc ON rc.id = n.recipe_id
		WHERE n.status = 'pending' AND n.scheduled_time <= ?
	`, now)
	if err != nil {
		return nil, fmt.Errorf("query: due notifications: %w", err)
	}
	defer rows.Close()

	var out []delivery.DueNotification
	for rows.Next() {
		var n delivery.DueNotification
		if err := rows.Scan(&n.ID, &n.UserID, &n.RecipeID, &n.RecipeTitle, &n.MealDate, &n.MessageBody); err != nil {
			return nil, fmt.Errorf("query: scan due notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// PushSubscriptionForUser implements delivery.Reader.
func (r *Reader) PushSubscriptionForUser(ctx context.Context, userID string) (id string, sub push.Subscription, found bool, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT id, endpoint, p256dh, auth FROM push_subscriptions WHERE user_id = ? AND removed = FALSE
		ORDER BY updated_at DESC LIMIT 1
	`, userID).Scan(&id, &sub.Endpoint, &sub.P256dh, &sub.Auth)
	if err == sql.ErrNoRows {
		return "", push.Subscription{}, false, nil
	}
	if err != nil {
		return "", push.Subscription{}, false, fmt.Errorf("query: push subscription for user: %w", err)
	}
	return id, sub, true, nil
}

// WeekSummary is one row of ListWeeksForUser.
type WeekSummary struct {
	WeekID    string
	StartDate string
	EndDate   string
	IsLocked  bool
	Status    string
}

// ListWeeksForUser is the week navigation query: every week the user
// has ever generated, newest first, optionally including archived
// batches.
func (r *Reader) ListWeeksForUser(ctx context.Context, userID string, includeArchived bool) ([]WeekSummary, error) {
	query := `SELECT week_id, start_date, end_date, is_locked, status FROM meal_plans WHERE user_id = ?`
	if !includeArchived {
		query += ` AND status = 'active'`
	}
	query += ` ORDER BY start_date DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query: list weeks for user: %w", err)
	}
	defer rows.Close()

	var out []WeekSummary
	for rows.Next() {
		var w WeekSummary
		if err := rows.Scan(&w.WeekID, &w.StartDate, &w.EndDate, &w.IsLocked, &w.Status); err != nil {
			return nil, fmt.Errorf("query: scan week summary: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// CourseProgress is one course's rotation exhaustion within RotationProgress.
type CourseProgress struct {
	UsedCount  int
	TotalCount int
}

// RotationProgress backs the "variety meter" the profile page renders.
type RotationProgress struct {
	CycleNumber int
	MainCourse  CourseProgress
	Appetizer   CourseProgress
	Dessert     CourseProgress
}

// GetRotationProgress implements the rotation-progress query.
// total_favorite_count is the persisted aggregate total across all
// courses; per-course totals are read from the recipes
// table directly since the rotation snapshot does not partition that
// count by course.
func (r *Reader) GetRotationProgress(ctx context.Context, userID string) (RotationProgress, error) {
	var (
		progress                                    RotationProgress
		usedMainJSON, usedAppJSON, usedDessertJSON  string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT cycle_number, used_main_course_ids, used_appetizer_ids, used_dessert_ids
		FROM meal_plan_rotation_state WHERE user_id = ?
	`, userID).Scan(&progress.CycleNumber, &usedMainJSON, &usedAppJSON, &usedDessertJSON)
	if err == sql.ErrNoRows {
		return RotationProgress{CycleNumber: 1}, nil
	}
	if err != nil {
		return RotationProgress{}, fmt.Errorf("query: load rotation progress: %w", err)
	}

	var usedMain, usedApp, usedDessert []string
	if err := json.Unmarshal([]byte(usedMainJSON), &usedMain); err != nil {
		return RotationProgress{}, fmt.Errorf("query: unmarshal used_main_course_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(usedAppJSON), &usedApp); err != nil {
		return RotationProgress{}, fmt.Errorf("query: unmarshal used_appetizer_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(usedDessertJSON), &usedDessert); err != nil {
		return RotationProgress{}, fmt.Errorf("query: unmarshal used_dessert_ids: %w", err)
	}
	progress.MainCourse.UsedCount = len(usedMain)
	progress.Appetizer.UsedCount = len(usedApp)
	progress.Dessert.UsedCount = len(usedDessert)

	totals, err := r.favoriteCountsByType(ctx, userID)
	if err != nil {
		return RotationProgress{}, err
	}
	progress.MainCourse.TotalCount = totals[events.RecipeTypeMainCourse]
	progress.Appetizer.TotalCount = totals[events.RecipeTypeAppetizer]
	progress.Dessert.TotalCount = totals[events.RecipeTypeDessert]

	return progress, nil
}

func (r *Reader) favoriteCountsByType(ctx context.Context, userID string) (map[events.RecipeType]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT recipe_type, COUNT(*) FROM recipes
		WHERE user_id = ? AND is_favorite = TRUE AND deleted = FALSE
		GROUP BY recipe_type
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query: favorite counts by type: %w", err)
	}
	defer rows.Close()

	out := make(map[events.RecipeType]int)
	for rows.Next() {
		var recipeType string
		var count int
		if err := rows.Scan(&recipeType, &count); err != nil {
			return nil, fmt.Errorf("query: scan favorite count: %w", err)
		}
		out[events.RecipeType(recipeType)] = count
	}
	return out, rows.Err()
}

// AssignmentsForWeek returns a week's 21 assignments in (date, course) order,
// backing the check-ready poll and the week-detail query.
func (r *Reader) AssignmentsForWeek(ctx context.Context, weekID string) ([]events.MealAssignmentData, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, course_type, recipe_id, prep_required, assignment_reasoning, accompaniment_recipe_id
		FROM meal_assignments WHERE week_id = ? ORDER BY date, course_type
	`, weekID)
	if err != nil {
		return nil, fmt.Errorf("query: assignments for week: %w", err)
	}
	defer rows.Close()

	var out []events.MealAssignmentData
	for rows.Next() {
		var a events.MealAssignmentData
		var courseType string
		if err := rows.Scan(&a.Date, &courseType, &a.RecipeID, &a.PrepRequired, &a.AssignmentReasoning, &a.AccompanimentRecipeID); err != nil {
			return nil, fmt.Errorf("query: scan week assignment: %w", err)
		}
		a.CourseType = events.CourseType(courseType)
		out = append(out, a)
	}
	return out, rows.Err()
}

// BatchReadiness answers the GET /plan/check-ready/:id poll: given a
// week id, find its generation batch and report how many of that
// batch's weeks have their full 21 assignments in place. found is false
// if weekID names no known week.
func (r *Reader) BatchReadiness(ctx context.Context, weekID string) (weeksReady, weeksTotal int, found bool, err error) {
	var batchID string
	err = r.db.QueryRowContext(ctx, `SELECT generation_batch_id FROM meal_plans WHERE week_id = ?`, weekID).Scan(&batchID)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("query: batch lookup: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT mp.week_id, COUNT(ma.recipe_id)
		FROM meal_plans mp
		LEFT JOIN meal_assignments ma ON ma.week_id = mp.week_id
		WHERE mp.generation_batch_id = ?
		GROUP BY mp.week_id
	`, batchID)
	if err != nil {
		return 0, 0, false, fmt.Errorf("query: batch readiness: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var wid string
		var count int
		if err := rows.Scan(&wid, &count); err != nil {
			return 0, 0, false, fmt.Errorf("query: scan batch week: %w", err)
		}
		weeksTotal++
		if count >= 21 {
			weeksReady++
		}
	}
	return weeksReady, weeksTotal, true, rows.Err()
}

// ContactMessageSummary is one row of the admin contact inbox.
type ContactMessageSummary struct {
	ID      string
	Name    string
	Email   string
	Subject string
	Status  string
}

// ListContactMessages returns the admin inbox, newest first, optionally
// filtered to one status ("" returns everything).
func (r *Reader) ListContactMessages(ctx context.Context, status string) ([]ContactMessageSummary, error) {
	q := `SELECT id, name, email, subject, status FROM contact_messages`
	args := []interface{}{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: list contact messages: %w", err)
	}
	defer rows.Close()

	var out []ContactMessageSummary
	for rows.Next() {
		var m ContactMessageSummary
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Status); err != nil {
			return nil, fmt.Errorf("query: scan contact message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DashboardMeal is one denormalized row of the dashboard_meals table:
// everything the dashboard renders for a course without joining back to
// meal_assignments or recipes.
type DashboardMeal struct {
	Date         string
	CourseType   events.CourseType
	RecipeID     string
	RecipeTitle  string
	PrepRequired bool
	WeekID       string
}

// DashboardMealsForDate returns the user's denormalized meals for one
// date, ordered by the course's default serving time rather than
// alphabetically: appetizer, then main_course, then dessert.
func (r *Reader) DashboardMealsForDate(ctx context.Context, userID, date string) ([]DashboardMeal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, course_type, recipe_id, recipe_title, prep_required, week_id
		FROM dashboard_meals WHERE user_id = ? AND date = ?
		ORDER BY CASE course_type WHEN 'appetizer' THEN 0 WHEN 'main_course' THEN 1 ELSE 2 END
	`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("query: dashboard meals: %w", err)
	}
	defer rows.Close()

	var out []DashboardMeal
	for rows.Next() {
		var m DashboardMeal
		var courseType string
		if err := rows.Scan(&m.Date, &courseType, &m.RecipeID, &m.RecipeTitle, &m.PrepRequired, &m.WeekID); err != nil {
			return nil, fmt.Errorf("query: scan dashboard meal: %w", err)
		}
		m.CourseType = events.CourseType(courseType)
		out = append(out, m)
	}
	return out, rows.Err()
}

// PrepTask is one open prep reminder shown on the dashboard's task list.
type PrepTask struct {
	NotificationID string
	RecipeID       string
	RecipeTitle    string
	MealDate       string
	ReminderType   events.ReminderType
	Task           string
	MessageBody    string
	ScheduledTime  time.Time
	Status         string
}

// PendingPrepTasks returns the user's not-yet-closed reminders —
// pending, sent, or snoozed — soonest first. Terminal states
// (completed, dismissed, expired, failed) never appear.
func (r *Reader) PendingPrepTasks(ctx context.Context, userID string) ([]PrepTask, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT n.id, n.recipe_id, COALESCE(rc.title, ''), n.meal_assignment_date,
			n.reminder_type, n.prep_task, n.message_body, n.scheduled_time, n.status
		FROM notifications n
		LEFT JOIN recipes rc ON rc.id = n.recipe_id
		WHERE n.user_id = ? AND n.status IN ('pending', 'sent', 'snoozed')
		ORDER BY n.scheduled_time ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query: pending prep tasks: %w", err)
	}
	defer rows.Close()

	var out []PrepTask
	for rows.Next() {
		var p PrepTask
		var reminderType string
		if err := rows.Scan(&p.NotificationID, &p.RecipeID, &p.RecipeTitle, &p.MealDate,
			&reminderType, &p.Task, &p.MessageBody, &p.ScheduledTime, &p.Status); err != nil {
			return nil, fmt.Errorf("query: scan prep task: %w", err)
		}
		p.ReminderType = events.ReminderType(reminderType)
		out = append(out, p)
	}
	return out, rows.Err()
}

// DashboardMetrics is the user's denormalized metrics row, maintained by
// the meal-plan and recipe projections.
type DashboardMetrics struct {
	TotalWeeksPlanned  int
	TotalFavorites     int
	CurrentCycleNumber int
}

// GetDashboardMetrics returns the user's metrics row, or zero counts on
// cycle 1 for a user who has never planned or favorited anything.
func (r *Reader) GetDashboardMetrics(ctx context.Context, userID string) (DashboardMetrics, error) {
	var m DashboardMetrics
	err := r.db.QueryRowContext(ctx, `
		SELECT total_weeks_planned, total_favorites, current_cycle_number
		FROM dashboard_metrics WHERE user_id = ?
	`, userID).Scan(&m.TotalWeeksPlanned, &m.TotalFavorites, &m.CurrentCycleNumber)
	if err == sql.ErrNoRows {
		return DashboardMetrics{CurrentCycleNumber: 1}, nil
	}
	if err != nil {
		return DashboardMetrics{}, fmt.Errorf("query: dashboard metrics: %w", err)
	}
	return m, nil
}

func (r *Reader) stringColumn(ctx context.Context, query string, arg interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query: %s: %w", query, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("query: scan id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
