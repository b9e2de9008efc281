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
	"encoding/json"
	"fmt"
	"time"

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/store"
)

// RegisterRecipe wires the recipes read table. Ingredients and
// instructions are not projected as columns — the planner only reads
// the scheduling-relevant fields (internal/planner.FromAggregate), so
// the full recipe body stays in the event stream and is loaded directly
// from there by the recipe-authoring command when a user edits it.
func RegisterRecipe(sub *Subscription, nowFunc func() time.Time) {
	sub.On(events.RecipeCreated, handleRecipeCreated(nowFunc))
	sub.On(events.RecipeUpdated, handleRecipeUpdated(nowFunc))
	sub.On(events.RecipeFavorited, handleRecipeFavorite(true, nowFunc))
	sub.On(events.RecipeUnfavorited, handleRecipeFavorite(false, nowFunc))
	sub.On(events.RecipeSharingToggled, handleRecipeSharingToggled(nowFunc))
	sub.On(events.RecipeDeleted, handleRecipeDeleted(nowFunc))
	SkipUnhandled(sub)
}

func handleRecipeCreated(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.RecipeCreatedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		dietary, accompaniments, err := marshalRecipeTags(p.DietaryTags, p.PreferredAccompaniments)
		if err != nil {
			return err
		}
		complexity := p.Complexity
		if complexity == "" {
			complexity = events.ComplexitySimple
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipes (
				id, user_id, title, recipe_type, prep_minutes, cook_minutes,
				advance_prep_hours, cuisine, dietary_tags, complexity,
				accepts_accompaniment, preferred_accompaniments, accompaniment_category,
				is_favorite, is_shared, deleted, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE, ?)
			ON CONFLICT (id) DO UPDATE SET
				title = excluded.title, recipe_type = excluded.recipe_type,
				prep_minutes = excluded.prep_minutes, cook_minutes = excluded.cook_minutes,
				advance_prep_hours = excluded.advance_prep_hours, cuisine = excluded.cuisine,
				dietary_tags = excluded.dietary_tags, complexity = excluded.complexity,
				accepts_accompaniment = excluded.accepts_accompaniment,
				preferred_accompaniments = excluded.preferred_accompaniments,
				accompaniment_category = excluded.accompaniment_category,
				is_favorite = excluded.is_favorite, is_shared = excluded.is_shared,
				updated_at = excluded.updated_at
		`, event.AggregateID, p.UserID, p.Title, string(p.RecipeType), p.PrepMinutes, p.CookMinutes,
			p.AdvancePrepHours, p.Cuisine, dietary, string(complexity), p.AcceptsAccompaniment,
			accompaniments, string(p.AccompanimentCategory), p.IsFavorite, p.IsShared, nowFunc())
		if err != nil {
			return fmt.Errorf("insert recipe %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleRecipeUpdated(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.RecipeUpdatedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		dietary, accompaniments, err := marshalRecipeTags(p.DietaryTags, p.PreferredAccompaniments)
		if err != nil {
			return err
		}
		complexity := p.Complexity
		if complexity == "" {
			complexity = events.ComplexitySimple
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE recipes SET
				title = ?, prep_minutes = ?, cook_minutes = ?, advance_prep_hours = ?,
				cuisine = ?, dietary_tags = ?, complexity = ?, accepts_accompaniment = ?,
				preferred_accompaniments = ?, accompaniment_category = ?, updated_at = ?
			WHERE id = ?
		`, p.Title, p.PrepMinutes, p.CookMinutes, p.AdvancePrepHours, p.Cuisine, dietary,
			string(complexity), p.AcceptsAccompaniment, accompaniments, string(p.AccompanimentCategory),
			nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("update recipe %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleRecipeFavorite(isFavorite bool, nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		_, err := tx.ExecContext(ctx, `UPDATE recipes SET is_favorite = ?, updated_at = ? WHERE id = ?`,
			isFavorite, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("set favorite on recipe %s: %w", event.AggregateID, err)
		}
		return refreshDashboardMetricsForRecipeOwner(ctx, tx, event.AggregateID, nowFunc())
	}
}

func handleRecipeSharingToggled(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		var p events.RecipeSharingToggledPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE recipes SET is_shared = ?, updated_at = ? WHERE id = ?`,
			p.IsShared, nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("toggle sharing on recipe %s: %w", event.AggregateID, err)
		}
		return nil
	}
}

func handleRecipeDeleted(nowFunc func() time.Time) Handler {
	return func(ctx context.Context, tx *store.Tx, event eventstore.Event) error {
		_, err := tx.ExecContext(ctx, `UPDATE recipes SET deleted = TRUE, is_favorite = FALSE, updated_at = ? WHERE id = ?`,
			nowFunc(), event.AggregateID)
		if err != nil {
			return fmt.Errorf("delete recipe %s: %w", event.AggregateID, err)
		}
		return refreshDashboardMetricsForRecipeOwner(ctx, tx, event.AggregateID, nowFunc())
	}
}

func marshalRecipeTags(dietary []string, accompaniments []events.AccompanimentCategory) (string, string, error) {
	d, err := json.Marshal(dietary)
	if err != nil {
		return "", "", fmt.Errorf("marshal dietary_tags: %w", err)
	}
	a, err := json.Marshal(accompaniments)
	if err != nil {
		return "", "", fmt.Errorf("marshal preferred_accompaniments: %w", err)
	}
	return string(d), string(a), nil
}
