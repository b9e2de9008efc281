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
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/store"
)

// RegisterMealPlan wires the meal-plan read-model subscription: one
// handler per generation event, each idempotent against redelivery.
func RegisterMealPlan(sub *Subscription, nowFunc func() time.Time) {
	sub.On(events.MultiWeekMealPlanGenerated, handleMultiWeekGenerated(nowFunc))
	sub.On(events.SingleWeekRegenerated, handleSingleWeekRegenerated(nowFunc))
	SkipUnhandled(sub)
}

func handleMultiWeekGenerated(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.MultiWeekMealPlanGeneratedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE meal_plans SET status = 'archived'
			WHERE user_id = ? AND generation_batch_id <> ? AND status = 'active'
		`, p.UserID, p.GenerationBatchID); err != nil {
			return fmt.Errorf("archive prior batches: %w", err)
		}

		for _, week := range p.Weeks {
			if err := upsertWeek(ctx, tx, p.UserID, p.GenerationBatchID, week, nowFunc()); err != nil {
				return err
			}
		}

		if err := upsertRotationState(ctx, tx, p.UserID, p.RotationState, nowFunc()); err != nil {
			return err
		}

		if len(p.Weeks) > 0 {
			if err := refreshDashboardMeals(ctx, tx, p.UserID, p.Weeks[0], nowFunc()); err != nil {
				return err
			}
		}

		return refreshDashboardMetrics(ctx, tx, p.UserID, nowFunc())
	}
}

func handleSingleWeekRegenerated(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.SingleWeekRegeneratedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}

		weekID := event.AggregateID

		var userID, startDate, endDate string
		err := tx.QueryRowContext(ctx, `SELECT user_id, start_date, end_date FROM meal_plans WHERE week_id = ?`, weekID).
			Scan(&userID, &startDate, &endDate)
		if err != nil {
			return fmt.Errorf("lookup regenerated week: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM meal_assignments WHERE week_id = ?`, weekID); err != nil {
			return fmt.Errorf("clear prior assignments: %w", err)
		}
		for _, a := range p.Assignments {
			if err := insertAssignment(ctx, tx, weekID, a); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE meal_plans SET updated_at = ? WHERE week_id = ?`, nowFunc(), weekID); err != nil {
			return fmt.Errorf("touch regenerated week: %w", err)
		}

		if err := upsertRotationState(ctx, tx, userID, p.RotationState, nowFunc()); err != nil {
			return err
		}

		week := events.WeekPlanData{WeekID: weekID, StartDate: startDate, EndDate: endDate, Assignments: p.Assignments}
		return refreshDashboardMeals(ctx, tx, userID, week, nowFunc())
	}
}

func upsertWeek(ctx context.Context, tx *store.Tx, userID, batchID string, week events.WeekPlanData, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO meal_plans (week_id, user_id, generation_batch_id, start_date, end_date, is_locked, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 'active', ?)
		ON CONFLICT (week_id) DO UPDATE SET
			generation_batch_id = excluded.generation_batch_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			is_locked = excluded.is_locked,
			status = 'active',
			updated_at = excluded.updated_at
	`, week.WeekID, userID, batchID, week.StartDate, week.EndDate, week.IsLocked, now)
	if err != nil {
		return fmt.Errorf("upsert meal_plans row for week %s: %w", week.WeekID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM meal_assignments WHERE week_id = ?`, week.WeekID); err != nil {
		return fmt.Errorf("clear prior assignments for week %s: %w", week.WeekID, err)
	}
	for _, a := range week.Assignments {
		if err := insertAssignment(ctx, tx, week.WeekID, a); err != nil {
			return err
		}
	}
	return nil
}

func insertAssignment(ctx context.Context, tx *store.Tx, weekID string, a events.MealAssignmentData) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO meal_assignments (week_id, date, course_type, recipe_id, prep_required, assignment_reasoning, accompaniment_recipe_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (week_id, date, course_type) DO UPDATE SET
			recipe_id = excluded.recipe_id,
			prep_required = excluded.prep_required,
			assignment_reasoning = excluded.assignment_reasoning,
			accompaniment_recipe_id = excluded.accompaniment_recipe_id
	`, weekID, a.Date, string(a.CourseType), a.RecipeID, a.PrepRequired, a.AssignmentReasoning, a.AccompanimentRecipeID)
	if err != nil {
		return fmt.Errorf("insert assignment %s/%s: %w", weekID, a.Date, err)
	}
	return nil
}

func upsertRotationState(ctx context.Context, tx *store.Tx, userID string, state events.RotationStateData, now time.Time) error {
	usedMain, err := json.Marshal(state.UsedMainCourseIDs)
	if err != nil {
		return fmt.Errorf("marshal used_main_course_ids: %w", err)
	}
	usedApp, err := json.Marshal(state.UsedAppetizerIDs)
	if err != nil {
		return fmt.Errorf("marshal used_appetizer_ids: %w", err)
	}
	usedDessert, err := json.Marshal(state.UsedDessertIDs)
	if err != nil {
		return fmt.Errorf("marshal used_dessert_ids: %w", err)
	}
	cuisine, err := json.Marshal(state.CuisineUsageCount)
	if err != nil {
		return fmt.Errorf("marshal cuisine_usage_count: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO meal_plan_rotation_state (
			user_id, cycle_number, cycle_started_at, used_main_course_ids,
			used_appetizer_ids, used_dessert_ids, cuisine_usage_count,
			last_complex_meal_date, total_favorite_count, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			cycle_number = excluded.cycle_number,
			cycle_started_at = excluded.cycle_started_at,
			used_main_course_ids = excluded.used_main_course_ids,
			used_appetizer_ids = excluded.used_appetizer_ids,
			used_dessert_ids = excluded.used_dessert_ids,
			cuisine_usage_count = excluded.cuisine_usage_count,
			last_complex_meal_date = excluded.last_complex_meal_date,
			total_favorite_count = excluded.total_favorite_count,
			updated_at = excluded.updated_at
	`, userID, state.CycleNumber, state.CycleStartedAt, string(usedMain), string(usedApp), string(usedDessert),
		string(cuisine), state.LastComplexMealDate, state.TotalFavoriteCount, now)
	if err != nil {
		return fmt.Errorf("upsert rotation state for %s: %w", userID, err)
	}
	return nil
}

// refreshDashboardMetrics recomputes the user's dashboard_metrics row
// from the base tables, so redelivering the triggering event converges
// on the same counts instead of double-incrementing them.
func refreshDashboardMetrics(ctx context.Context, tx *store.Tx, userID string, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO dashboard_metrics (user_id, total_weeks_planned, total_favorites, current_cycle_number, updated_at)
		VALUES (
			?,
			(SELECT COUNT(*) FROM meal_plans WHERE user_id = ?),
			(SELECT COUNT(*) FROM recipes WHERE user_id = ? AND is_favorite = TRUE AND deleted = FALSE),
			(SELECT COALESCE(MAX(cycle_number), 1) FROM meal_plan_rotation_state WHERE user_id = ?),
			?
		)
		ON CONFLICT (user_id) DO UPDATE SET
			total_weeks_planned = excluded.total_weeks_planned,
			total_favorites = excluded.total_favorites,
			current_cycle_number = excluded.current_cycle_number,
			updated_at = excluded.updated_at
	`, userID, userID, userID, userID, now)
	if err != nil {
		return fmt.Errorf("refresh dashboard_metrics for %s: %w", userID, err)
	}
	return nil
}

// refreshDashboardMetricsForRecipeOwner is refreshDashboardMetrics keyed
// by a recipe id — favorite/unfavorite/delete events carry no user_id in
// their payload, so the owner comes from the recipes row itself.
func refreshDashboardMetricsForRecipeOwner(ctx context.Context, tx *store.Tx, recipeID string, now time.Time) error {
	var userID string
	err := tx.QueryRowContext(ctx, `SELECT user_id FROM recipes WHERE id = ?`, recipeID).Scan(&userID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup recipe owner for %s: %w", recipeID, err)
	}
	return refreshDashboardMetrics(ctx, tx, userID, now)
}

// refreshDashboardMeals rewrites the denormalized rows for today's date
// within week, if today falls in its range, so the dashboard never joins.
func refreshDashboardMeals(ctx context.Context, tx *store.Tx, userID string, week events.WeekPlanData, now time.Time) error {
	today := now.Format("2006-01-02")
	if today < week.StartDate || today > week.EndDate {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dashboard_meals WHERE user_id = ? AND date = ?`, userID, today); err != nil {
		return fmt.Errorf("clear dashboard_meals for %s: %w", today, err)
	}

	for _, a := range week.Assignments {
		if a.Date != today {
			continue
		}
		var title string
		err := tx.QueryRowContext(ctx, `SELECT title FROM recipes WHERE id = ?`, a.RecipeID).Scan(&title)
		if err == sql.ErrNoRows {
			title = ""
		} else if err != nil {
			return fmt.Errorf("lookup recipe title for %s: %w", a.RecipeID, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dashboard_meals (user_id, date, course_type, recipe_id, recipe_title, prep_required, week_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, userID, a.Date, string(a.CourseType), a.RecipeID, title, a.PrepRequired, week.WeekID); err != nil {
			return fmt.Errorf("insert dashboard_meals row: %w", err)
		}
	}
	return nil
}
