// Package planner implements the single-week and multi-week
// constraint-satisfying meal scheduler.
package planner

import (
	"github.com/imkitchen/imkitchen/internal/aggregate"
	"github.com/imkitchen/imkitchen/internal/events"
)

// Recipe is the planner's view of a favorite recipe — the fields the
// constraint rules actually consult, decoupled from the full aggregate.
type Recipe struct {
	ID                      string
	RecipeType              events.RecipeType
	DietaryTags             map[string]struct{}
	TotalMinutes            int
	Complexity              events.Complexity
	Cuisine                 string
	AcceptsAccompaniment    bool
	PreferredAccompaniments map[events.AccompanimentCategory]struct{}
	AccompanimentCategory   events.AccompanimentCategory // non-empty iff this recipe is itself an accompaniment
	AdvancePrepHours        int
}

// RecipeID satisfies rotation.RecipeRef.
func (r Recipe) RecipeID() string { return r.ID }

// FromAggregate adapts a loaded Recipe aggregate into the planner's view.
func FromAggregate(r *aggregate.Recipe) Recipe {
	tags := make(map[string]struct{}, len(r.DietaryTags))
	for _, t := range r.DietaryTags {
		tags[t] = struct{}{}
	}
	preferred := make(map[events.AccompanimentCategory]struct{}, len(r.PreferredAccompaniments))
	for _, c := range r.PreferredAccompaniments {
		preferred[c] = struct{}{}
	}
	return Recipe{
		ID:                      r.ID,
		RecipeType:              r.RecipeType,
		DietaryTags:             tags,
		TotalMinutes:            r.TotalMinutes(),
		Complexity:              r.Complexity,
		Cuisine:                 r.Cuisine,
		AcceptsAccompaniment:    r.AcceptsAccompaniment,
		PreferredAccompaniments: preferred,
		AccompanimentCategory:   r.AccompanimentCategory,
		AdvancePrepHours:        r.AdvancePrepHours,
	}
}

// Preferences is the subset of user meal-planning preferences the
// planner consults.
type Preferences struct {
	MaxPrepTimeWeeknight    int
	MaxPrepTimeWeekend      int
	AvoidConsecutiveComplex bool
	CuisineVarietyWeight    float64
	DietaryRestrictions     []string
}

// FromUserPreferences adapts aggregate.MealPlanningPreferences.
func FromUserPreferences(p aggregate.MealPlanningPreferences) Preferences {
	return Preferences{
		MaxPrepTimeWeeknight:    p.MaxPrepTimeWeeknight,
		MaxPrepTimeWeekend:      p.MaxPrepTimeWeekend,
		AvoidConsecutiveComplex: p.AvoidConsecutiveComplex,
		CuisineVarietyWeight:    p.CuisineVarietyWeight,
		DietaryRestrictions:     p.DietaryRestrictions,
	}
}

// WeekMealPlan is one generated week, pre-projection.
type WeekMealPlan struct {
	WeekID      string
	StartDate   string
	EndDate     string
	IsLocked    bool
	Assignments []events.MealAssignmentData
}
