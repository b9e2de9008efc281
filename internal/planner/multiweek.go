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

package planner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/reasoning"
	"github.com/imkitchen/imkitchen/internal/rotation"
)

// MaxWeeksPerBatch bounds a single generation batch.
const MaxWeeksPerBatch = 5

// MultiWeekResult is the outcome of PlanWeeks: however many weeks were
// successfully planned before either reaching MaxWeeksPerBatch or running
// out of recipes, plus the rotation state as left after the last
// successful week.
type MultiWeekResult struct {
	Weeks            []WeekMealPlan
	MaxWeeksPossible int
	RotationState    events.RotationStateData
	FailureReason    error // non-nil only if zero weeks could be planned
}

// PlanWeeks plans up to MaxWeeksPerBatch
// consecutive Monday-anchored weeks starting at anchorMonday, threading
// rotation state across weeks and stopping early — without failing the
// whole batch — the first time a week cannot be planned.
func PlanWeeks(recipes []Recipe, prefs Preferences, state *rotation.State, anchorMonday time.Time, weeksRequested int, batchID string) MultiWeekResult {
	return PlanWeeksWithReasoner(context.Background(), recipes, prefs, state, anchorMonday, weeksRequested, batchID, nil)
}

// PlanWeeksWithReasoner is PlanWeeks with an optional reasoning generator
// threaded into every week (internal/reasoning). gen may be nil.
func PlanWeeksWithReasoner(ctx context.Context, recipes []Recipe, prefs Preferences, state *rotation.State, anchorMonday time.Time, weeksRequested int, batchID string, gen reasoning.Generator) MultiWeekResult {
	if weeksRequested > MaxWeeksPerBatch {
		weeksRequested = MaxWeeksPerBatch
	}
	if weeksRequested < 1 {
		weeksRequested = 1
	}

	result := MultiWeekResult{}

	// The main-course cycle is exhausted once every eligible main has been used.
	mainPool := 0
	for _, r := range filterByDietary(recipes, prefs.DietaryRestrictions) {
		if r.AccompanimentCategory == "" && r.RecipeType == events.RecipeTypeMainCourse {
			mainPool++
		}
	}

	for i := 0; i < weeksRequested; i++ {
		weekStart := anchorMonday.AddDate(0, 0, 7*i)

		if state.ShouldResetCycle(events.CourseMainCourse, mainPool) {
			state.ResetCycle(weekStart)
		}

		weekID := uuid.NewString()
		plan, err := PlanWeekWithReasoner(ctx, recipes, prefs, state, weekStart, weekID, batchID, gen)
		if err != nil {
			if len(result.Weeks) == 0 {
				result.FailureReason = err
			}
			break
		}

		result.Weeks = append(result.Weeks, plan)
	}

	result.MaxWeeksPossible = len(result.Weeks)
	result.RotationState = state.Snapshot()
	return result
}

// NextMonday returns the first Monday strictly after from. A freshly
// requested batch always anchors on the next full week: even when today
// is itself a Monday, the week already underway is never replanned
// retroactively.
func NextMonday(from time.Time) time.Time {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	from = from.AddDate(0, 0, 1)
	for from.Weekday() != time.Monday {
		from = from.AddDate(0, 0, 1)
	}
	return from
}
