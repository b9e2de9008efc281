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
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/reasoning"
	"github.com/imkitchen/imkitchen/internal/rotation"
)

// MinFavoriteMainCourses is the floor checked before planning a week
// can even be attempted: one distinct main per day.
const MinFavoriteMainCourses = 7

// PlanWeek is the single-week solver: given the favorite pool, preferences,
// and the mutable rotation state, produce 21 assignments for the
// Monday-anchored week starting at weekStartMonday. The batch id seeds the
// RNG so regeneration of the same batch is reproducible.
func PlanWeek(recipes []Recipe, prefs Preferences, state *rotation.State, weekStartMonday time.Time, weekID, batchID string) (WeekMealPlan, error) {
	return PlanWeekWithReasoner(context.Background(), recipes, prefs, state, weekStartMonday, weekID, batchID, nil)
}

// PlanWeekWithReasoner is PlanWeek with an optional AI-assisted reasoning
// enrichment pass (internal/reasoning). gen may be nil, in which case the
// deterministic template text is used unchanged.
func PlanWeekWithReasoner(ctx context.Context, recipes []Recipe, prefs Preferences, state *rotation.State, weekStartMonday time.Time, weekID, batchID string, gen reasoning.Generator) (WeekMealPlan, error) {
	if weekStartMonday.Weekday() != time.Monday {
		return WeekMealPlan{}, ErrWeekStartNotMonday
	}

	eligible := filterByDietary(recipes, prefs.DietaryRestrictions)

	var appetizers, mains, desserts, accompaniments []Recipe
	for _, r := range eligible {
		switch {
		case r.AccompanimentCategory != "":
			accompaniments = append(accompaniments, r)
		case r.RecipeType == events.RecipeTypeAppetizer:
			appetizers = append(appetizers, r)
		case r.RecipeType == events.RecipeTypeMainCourse:
			mains = append(mains, r)
		case r.RecipeType == events.RecipeTypeDessert:
			desserts = append(desserts, r)
		}
	}

	if len(mains) < MinFavoriteMainCourses {
		return WeekMealPlan{}, &InsufficientRecipesError{Kind: string(events.CourseMainCourse), Required: MinFavoriteMainCourses, Available: len(mains)}
	}

	rng := newRNG(batchID)

	days := make([]time.Time, 7)
	for i := range days {
		days[i] = weekStartMonday.AddDate(0, 0, i)
	}

	mainByDay := make(map[string]Recipe, 7)
	recipeByID := make(map[string]Recipe, len(recipes))
	for _, r := range recipes {
		recipeByID[r.ID] = r
	}

	for _, day := range days {
		dateStr := day.Format("2006-01-02")
		weeknight := day.Weekday() >= time.Monday && day.Weekday() <= time.Friday

		candidates := rotation.FilterAvailable(state, mains, events.CourseMainCourse)
		if len(candidates) == 0 {
			return WeekMealPlan{}, &InsufficientRecipesError{Kind: string(events.CourseMainCourse), Required: 1, Available: 0}
		}

		maxTime := prefs.MaxPrepTimeWeekend
		if weeknight {
			maxTime = prefs.MaxPrepTimeWeeknight
		}
		if maxTime > 0 {
			candidates = filterByTimeBudget(candidates, maxTime)
		}
		if len(candidates) == 0 {
			return WeekMealPlan{}, &InsufficientRecipesError{Kind: string(events.CourseMainCourse), Required: 1, Available: 0}
		}

		if prefs.AvoidConsecutiveComplex && state.LastComplexMealDate != "" {
			prevDay := day.AddDate(0, 0, -1).Format("2006-01-02")
			if state.LastComplexMealDate == prevDay {
				if withoutComplex := dropComplex(candidates); len(withoutComplex) > 0 {
					candidates = withoutComplex
				}
			}
		}

		chosen := pickByCuisineVariety(candidates, state, prefs.CuisineVarietyWeight, rng)
		mainByDay[dateStr] = chosen

		state.MarkUsed(events.CourseMainCourse, chosen.ID)
		state.IncrementCuisine(chosen.Cuisine)
		if chosen.Complexity == events.ComplexityComplex {
			state.SetLastComplexMealDate(dateStr)
		}
	}

	weekUsedAppetizer := map[string]struct{}{}
	weekUsedDessert := map[string]struct{}{}
	weekUsedAccompaniment := map[string]struct{}{}

	assignments := make([]events.MealAssignmentData, 0, 21)
	for _, day := range days {
		dateStr := day.Format("2006-01-02")
		weeknight := day.Weekday() >= time.Monday && day.Weekday() <= time.Friday

		main := mainByDay[dateStr]
		accompanimentID := ""
		if main.AcceptsAccompaniment {
			accompanimentID = chooseAccompaniment(main, accompaniments, weekUsedAccompaniment, rng)
			if accompanimentID != "" {
				weekUsedAccompaniment[accompanimentID] = struct{}{}
			}
		}
		reasoningText := mainCourseReasoning(main, dateStr, weeknight, maxTimeFor(prefs, weeknight))
		if gen != nil {
			reasoningText = reasoning.Enrich(ctx, gen, reasoningText, reasoningPrompt(main, dateStr))
		}
		assignments = append(assignments, events.MealAssignmentData{
			Date:                  dateStr,
			CourseType:            events.CourseMainCourse,
			RecipeID:              main.ID,
			PrepRequired:          main.AdvancePrepHours > 0,
			AssignmentReasoning:   reasoningText,
			AccompanimentRecipeID: accompanimentID,
		})

		appetizerID, err := selectSideCourse(state, events.CourseAppetizer, appetizers, weekUsedAppetizer, rng)
		if err != nil {
			return WeekMealPlan{}, err
		}
		weekUsedAppetizer[appetizerID] = struct{}{}
		assignments = append(assignments, events.MealAssignmentData{
			Date:                dateStr,
			CourseType:          events.CourseAppetizer,
			RecipeID:            appetizerID,
			PrepRequired:        recipeByID[appetizerID].AdvancePrepHours > 0,
			AssignmentReasoning: "",
		})

		dessertID, err := selectSideCourse(state, events.CourseDessert, desserts, weekUsedDessert, rng)
		if err != nil {
			return WeekMealPlan{}, err
		}
		weekUsedDessert[dessertID] = struct{}{}
		assignments = append(assignments, events.MealAssignmentData{
			Date:                dateStr,
			CourseType:          events.CourseDessert,
			RecipeID:            dessertID,
			PrepRequired:        recipeByID[dessertID].AdvancePrepHours > 0,
			AssignmentReasoning: "",
		})
	}

	return WeekMealPlan{
		WeekID:      weekID,
		StartDate:   days[0].Format("2006-01-02"),
		EndDate:     days[6].Format("2006-01-02"),
		IsLocked:    false,
		Assignments: assignments,
	}, nil
}

func maxTimeFor(prefs Preferences, weeknight bool) int {
	if weeknight {
		return prefs.MaxPrepTimeWeeknight
	}
	return prefs.MaxPrepTimeWeekend
}

func filterByDietary(recipes []Recipe, restrictions []string) []Recipe {
	if len(restrictions) == 0 {
		return recipes
	}
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		ok := true
		for _, restriction := range restrictions {
			if _, has := r.DietaryTags[restriction]; !has {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

func filterByTimeBudget(recipes []Recipe, maxMinutes int) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.TotalMinutes <= maxMinutes {
			out = append(out, r)
		}
	}
	return out
}

func dropComplex(recipes []Recipe) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.Complexity != events.ComplexityComplex {
			out = append(out, r)
		}
	}
	return out
}

// pickByCuisineVariety is the cuisine-variety weighted draw:
// with probability cuisineVarietyWeight pick the argmax cuisine-variety
// score, tie-broken by ascending recipe id; otherwise pick uniformly.
func pickByCuisineVariety(candidates []Recipe, state *rotation.State, weight float64, rng *rand.Rand) Recipe {
	sorted := append([]Recipe(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	if rng.Float64() < weight {
		best := sorted[0]
		bestScore := cuisineScore(state, best.Cuisine)
		for _, r := range sorted[1:] {
			score := cuisineScore(state, r.Cuisine)
			if score > bestScore {
				best = r
				bestScore = score
			}
		}
		return best
	}

	return sorted[rng.Intn(len(sorted))]
}

func cuisineScore(state *rotation.State, cuisine string) float64 {
	return 1.0 / (1.0 + float64(state.CuisineUsageCount[cuisine]))
}

// selectSideCourse picks an appetizer or dessert: draw from the
// rotation-available pool; if exhausted, reset only this course's used
// set and redraw. Appetizers/desserts may repeat across weeks but not
// within a week unless the pool is smaller than 7.
func selectSideCourse(state *rotation.State, course events.CourseType, pool []Recipe, weekUsed map[string]struct{}, rng *rand.Rand) (string, error) {
	if len(pool) == 0 {
		return "", &InsufficientRecipesError{Kind: string(course), Required: 1, Available: 0}
	}

	avail := rotation.FilterAvailable(state, pool, course)
	if len(avail) == 0 {
		state.ResetCourse(course)
		avail = rotation.FilterAvailable(state, pool, course)
	}

	notUsedThisWeek := make([]Recipe, 0, len(avail))
	for _, r := range avail {
		if _, used := weekUsed[r.ID]; !used {
			notUsedThisWeek = append(notUsedThisWeek, r)
		}
	}

	candidates := notUsedThisWeek
	if len(candidates) == 0 {
		// Pool too small to avoid a within-week repeat; deliberate
		// repeats are allowed when the pool is smaller than 7.
		candidates = avail
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	chosen := candidates[rng.Intn(len(candidates))]
	state.MarkUsed(course, chosen.ID)
	return chosen.ID, nil
}

// chooseAccompaniment pairs a side with a main that accepts one,
// preferring an unused recipe from the main's preferred categories.
func chooseAccompaniment(main Recipe, accompaniments []Recipe, weekUsed map[string]struct{}, rng *rand.Rand) string {
	if len(accompaniments) == 0 {
		return ""
	}

	var preferred, preferredUnused, any []Recipe
	for _, a := range accompaniments {
		if _, ok := main.PreferredAccompaniments[a.AccompanimentCategory]; ok {
			preferred = append(preferred, a)
			if _, used := weekUsed[a.ID]; !used {
				preferredUnused = append(preferredUnused, a)
			}
		}
		any = append(any, a)
	}

	pick := func(pool []Recipe) string {
		if len(pool) == 0 {
			return ""
		}
		sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
		return pool[rng.Intn(len(pool))].ID
	}

	if id := pick(preferredUnused); id != "" {
		return id
	}
	if id := pick(preferred); id != "" {
		return id
	}
	return pick(any)
}

func mainCourseReasoning(main Recipe, dateStr string, weeknight bool, maxTime int) string {
	budget := "weekend"
	if weeknight {
		budget = "weeknight"
	}
	cuisineNote := ""
	if main.Cuisine != "" {
		cuisineNote = fmt.Sprintf(" and adds %s cuisine variety", main.Cuisine)
	}
	if maxTime > 0 {
		return fmt.Sprintf("Chose this for %s because it fits your %d-minute %s budget%s.", dateStr, maxTime, budget, cuisineNote)
	}
	return fmt.Sprintf("Chose this for %s%s.", dateStr, cuisineNote)
}

func reasoningPrompt(main Recipe, dateStr string) string {
	return fmt.Sprintf("Meal plan assignment: %s cuisine main course scheduled for %s.", main.Cuisine, dateStr)
}
