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

package aggregate

import (
	"fmt"

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
)

// Recipe is the fold target for the Recipe aggregate.
type Recipe struct {
	ID                      string
	UserID                  string
	Title                   string
	RecipeType              events.RecipeType
	Ingredients             []events.Ingredient
	Instructions            []events.InstructionStep
	PrepMinutes             int
	CookMinutes             int
	AdvancePrepHours        int
	Cuisine                 string
	DietaryTags             []string
	Complexity              events.Complexity
	AcceptsAccompaniment    bool
	PreferredAccompaniments []events.AccompanimentCategory
	AccompanimentCategory   events.AccompanimentCategory
	IsFavorite              bool
	IsShared                bool
	Deleted                 bool
	Version                 int
}

func NewRecipe(id string) *Recipe { return &Recipe{ID: id} }

// TotalMinutes is prep + cook, the figure the planner budgets against.
func (r *Recipe) TotalMinutes() int { return r.PrepMinutes + r.CookMinutes }

func (r *Recipe) Apply(event eventstore.Event) error {
	switch event.EventName {
	case events.RecipeCreated:
		var p events.RecipeCreatedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		r.UserID = p.UserID
		r.Title = p.Title
		r.RecipeType = p.RecipeType
		r.Ingredients = p.Ingredients
		r.Instructions = p.Instructions
		r.PrepMinutes = p.PrepMinutes
		r.CookMinutes = p.CookMinutes
		r.AdvancePrepHours = p.AdvancePrepHours
		r.Cuisine = p.Cuisine
		r.DietaryTags = p.DietaryTags
		r.Complexity = p.Complexity
		r.AcceptsAccompaniment = p.AcceptsAccompaniment
		r.PreferredAccompaniments = p.PreferredAccompaniments
		r.AccompanimentCategory = p.AccompanimentCategory
		r.IsFavorite = p.IsFavorite
		r.IsShared = p.IsShared

	case events.RecipeUpdated:
		var p events.RecipeUpdatedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		r.Title = p.Title
		r.Ingredients = p.Ingredients
		r.Instructions = p.Instructions
		r.PrepMinutes = p.PrepMinutes
		r.CookMinutes = p.CookMinutes
		r.AdvancePrepHours = p.AdvancePrepHours
		r.Cuisine = p.Cuisine
		r.DietaryTags = p.DietaryTags
		r.Complexity = p.Complexity
		r.AcceptsAccompaniment = p.AcceptsAccompaniment
		r.PreferredAccompaniments = p.PreferredAccompaniments
		r.AccompanimentCategory = p.AccompanimentCategory

	case events.RecipeFavorited:
		r.IsFavorite = true

	case events.RecipeUnfavorited:
		r.IsFavorite = false

	case events.RecipeSharingToggled:
		var p events.RecipeSharingToggledPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		r.IsShared = p.IsShared

	case events.RecipeDeleted:
		r.Deleted = true

	default:
		return fmt.Errorf("aggregate recipe: unhandled event %q", event.EventName)
	}

	r.Version = event.Version
	return nil
}
