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

// Package httpapi is the thin HTTP surface: gin
// handlers that bind a request, issue one command or query call, and
// render the result. No business rule lives here — every precondition
// and invariant is enforced by the command/query layer underneath.
package httpapi

import "github.com/imkitchen/imkitchen/internal/events"

// registerRequest is the body of POST /api/v1/auth/register.
type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// loginRequest is the body of POST /api/v1/auth/login.
type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// updatePreferencesRequest is the PUT /profile/meal-planning-preferences
// body.
type updatePreferencesRequest struct {
	MaxPrepTimeWeeknight    int      `json:"max_prep_time_weeknight" binding:"required,gt=0"`
	MaxPrepTimeWeekend      int      `json:"max_prep_time_weekend" binding:"required,gt=0"`
	AvoidConsecutiveComplex bool     `json:"avoid_consecutive_complex"`
	CuisineVarietyWeight    float64  `json:"cuisine_variety_weight" binding:"gte=0,lte=1"`
	DietaryRestrictions     []string `json:"dietary_restrictions"`
}

func (r updatePreferencesRequest) toPayload() events.UserMealPlanningPreferencesUpdatedPayload {
	return events.UserMealPlanningPreferencesUpdatedPayload{
		MaxPrepTimeWeeknight:    r.MaxPrepTimeWeeknight,
		MaxPrepTimeWeekend:      r.MaxPrepTimeWeekend,
		AvoidConsecutiveComplex: r.AvoidConsecutiveComplex,
		CuisineVarietyWeight:    r.CuisineVarietyWeight,
		DietaryRestrictions:     r.DietaryRestrictions,
	}
}

// contactRequest is the body of POST /api/v1/contact.
type contactRequest struct {
	Name    string `json:"name" binding:"max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,max=200"`
	Body    string `json:"body" binding:"required,max=5000"`
}

// snoozeRequest is the POST /api/notifications/:id/snooze body;
// duration_hours is one of {1,2,4}.
type snoozeRequest struct {
	DurationHours int `json:"duration_hours" binding:"required,oneof=1 2 4"`
}

// createRecipeRequest mirrors events.RecipeCreatedPayload minus the
// server-assigned user_id.
type createRecipeRequest struct {
	Title                   string                         `json:"title" binding:"required,max=200"`
	RecipeType              events.RecipeType              `json:"recipe_type" binding:"required,oneof=appetizer main_course dessert"`
	Ingredients             []events.Ingredient             `json:"ingredients" binding:"required,min=1,dive"`
	Instructions            []events.InstructionStep        `json:"instructions" binding:"required,min=1,dive"`
	PrepMinutes             int                             `json:"prep_minutes" binding:"gte=0"`
	CookMinutes             int                             `json:"cook_minutes" binding:"gte=0"`
	AdvancePrepHours        int                             `json:"advance_prep_hours" binding:"gte=0"`
	Cuisine                 string                          `json:"cuisine"`
	DietaryTags             []string                        `json:"dietary_tags"`
	Complexity              events.Complexity               `json:"complexity" binding:"omitempty,oneof=simple complex"`
	AcceptsAccompaniment    bool                            `json:"accepts_accompaniment"`
	PreferredAccompaniments []events.AccompanimentCategory `json:"preferred_accompaniments"`
	AccompanimentCategory   events.AccompanimentCategory    `json:"accompaniment_category"`
}

func (r createRecipeRequest) toPayload() events.RecipeCreatedPayload {
	return events.RecipeCreatedPayload{
		Title:                   r.Title,
		RecipeType:              r.RecipeType,
		Ingredients:             r.Ingredients,
		Instructions:            r.Instructions,
		PrepMinutes:             r.PrepMinutes,
		CookMinutes:             r.CookMinutes,
		AdvancePrepHours:        r.AdvancePrepHours,
		Cuisine:                 r.Cuisine,
		DietaryTags:             r.DietaryTags,
		Complexity:              r.Complexity,
		AcceptsAccompaniment:    r.AcceptsAccompaniment,
		PreferredAccompaniments: r.PreferredAccompaniments,
		AccompanimentCategory:   r.AccompanimentCategory,
	}
}
