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

package command

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
)

// RecipeOwnerLookup answers ownership the same way NotificationOwnerLookup
// does, from the recipes read table.
type RecipeOwnerLookup interface {
	RecipeOwner(ctx context.Context, recipeID string) (userID string, found bool, err error)
}

// RecipeService implements the recipe-authoring commands: full CRUD plus
// favorite/unfavorite/share toggling exercise the Recipe aggregate even
// though the authoring UI lives elsewhere — the planner's
// FavoritesReader needs the CRUD contract, not the scraping/import
// surface.
type RecipeService struct {
	store  eventstore.Store
	owners RecipeOwnerLookup
	log    zerolog.Logger
}

// NewRecipeService wires the command's collaborators.
func NewRecipeService(store eventstore.Store, owners RecipeOwnerLookup, log zerolog.Logger) *RecipeService {
	return &RecipeService{store: store, owners: owners, log: log.With().Str("component", "command.recipe").Logger()}
}

// Create appends a RecipeCreated event, starting a new stream.
func (s *RecipeService) Create(ctx context.Context, userID string, p events.RecipeCreatedPayload) (recipeID string, err error) {
	p.UserID = userID
	recipeID, err = s.store.Create(ctx, eventstore.AggregateRecipe, eventstore.PendingEvent{
		EventName: events.RecipeCreated,
		Payload:   p,
		Metadata:  eventstore.Metadata{UserID: userID},
	})
	if err != nil {
		return "", fmt.Errorf("command: create recipe: %w", err)
	}
	return recipeID, nil
}

// Update appends a RecipeUpdated event for a recipe the caller owns.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID string, p events.RecipeUpdatedPayload) error {
	return s.appendOwned(ctx, userID, recipeID, events.RecipeUpdated, p)
}

// Favorite marks recipeID as a favorite for its owner.
func (s *RecipeService) Favorite(ctx context.Context, userID, recipeID string) error {
	return s.appendOwned(ctx, userID, recipeID, events.RecipeFavorited, events.RecipeFavoritedPayload{})
}

// Unfavorite clears the favorite flag.
func (s *RecipeService) Unfavorite(ctx context.Context, userID, recipeID string) error {
	return s.appendOwned(ctx, userID, recipeID, events.RecipeUnfavorited, events.RecipeUnfavoritedPayload{})
}

// ToggleSharing sets whether other users can see this recipe.
func (s *RecipeService) ToggleSharing(ctx context.Context, userID, recipeID string, isShared bool) error {
	return s.appendOwned(ctx, userID, recipeID, events.RecipeSharingToggled, events.RecipeSharingToggledPayload{IsShared: isShared})
}

// Delete soft-deletes a recipe; the rotation tracker forgets it on the
// next cycle reset rather than retroactively.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID string) error {
	return s.appendOwned(ctx, userID, recipeID, events.RecipeDeleted, events.RecipeDeletedPayload{})
}

func (s *RecipeService) appendOwned(ctx context.Context, userID, recipeID, eventName string, payload interface{}) error {
	owner, found, err := s.owners.RecipeOwner(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("command: lookup recipe owner: %w", err)
	}
	if !found || owner != userID {
		return ErrForbidden
	}

	loaded, err := s.store.Load(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("command: load recipe stream: %w", err)
	}
	expected := loaded.CurrentVersion

	if err := s.store.Append(ctx, eventstore.AggregateRecipe, recipeID, &expected, []eventstore.PendingEvent{{
		EventName: eventName,
		Payload:   payload,
		Metadata:  eventstore.Metadata{UserID: userID},
	}}); err != nil {
		return fmt.Errorf("command: append %s: %w", eventName, err)
	}
	return nil
}
