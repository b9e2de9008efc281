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
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/aggregate"
	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/lockmap"
	"github.com/imkitchen/imkitchen/internal/planner"
	"github.com/imkitchen/imkitchen/internal/reasoning"
	"github.com/imkitchen/imkitchen/internal/rotation"
)

// FavoritesReader loads a user's favorite recipes from the recipes read
// table — the command layer never talks to the event store for anything
// but its own aggregate's stream.
type FavoritesReader interface {
	FavoriteRecipes(ctx context.Context, userID string) ([]planner.Recipe, error)
}

// PreferencesReader loads a user's meal-planning preferences, or the
// default set if the user has never customized them.
type PreferencesReader interface {
	MealPlanningPreferences(ctx context.Context, userID string) (aggregate.MealPlanningPreferences, error)
}

// RotationReader loads the persisted rotation tracker for a user, or a
// fresh one if none exists yet.
type RotationReader interface {
	RotationState(ctx context.Context, userID string) (*events.RotationStateData, error)
}

// WeekLookup answers the ownership/lock/timing preconditions Regenerate
// needs before touching a specific week.
type WeekLookup interface {
	WeekOwnerAndStatus(ctx context.Context, weekID string) (userID string, startDate string, isLocked bool, found bool, err error)
}

// ShoppingListCollaborator is the external shopping-list service: one
// command per generated week, fired-and-forgotten from the meal-plan
// command's point of view.
type ShoppingListCollaborator interface {
	GenerateForWeek(ctx context.Context, userID, weekID, weekStartDate string, ingredients []events.Ingredient) error
}

// ReminderScheduler is the notification collaborator reacting to
// meal-plan generation; it is invoked directly after the generating
// event commits, as a synchronous collaborator rather than a
// projection handler — it only needs the in-memory week data the
// command already holds.
type ReminderScheduler interface {
	ScheduleForWeek(ctx context.Context, userID string, week events.WeekPlanData)
}

// MealPlanService implements the meal-plan Generate/Regenerate
// commands.
type MealPlanService struct {
	store        eventstore.Store
	locks        *lockmap.Map
	favorites    FavoritesReader
	preferences  PreferencesReader
	rotations    RotationReader
	weeks        WeekLookup
	shoppingList ShoppingListCollaborator
	reminders    ReminderScheduler
	reasoner     reasoning.Generator
	log          zerolog.Logger
	now          func() time.Time
}

// NewMealPlanService wires the command's collaborators. reasoner may be
// nil — it only enriches assignment_reasoning text and is never required
// for planning to succeed (internal/reasoning).
func NewMealPlanService(
	store eventstore.Store,
	locks *lockmap.Map,
	favorites FavoritesReader,
	preferences PreferencesReader,
	rotations RotationReader,
	weeks WeekLookup,
	shoppingList ShoppingListCollaborator,
	reminders ReminderScheduler,
	reasoner reasoning.Generator,
	log zerolog.Logger,
) *MealPlanService {
	return &MealPlanService{
		store:        store,
		locks:        locks,
		favorites:    favorites,
		preferences:  preferences,
		rotations:    rotations,
		weeks:        weeks,
		shoppingList: shoppingList,
		reminders:    reminders,
		reasoner:     reasoner,
		log:          log.With().Str("component", "command.mealplan").Logger(),
		now:          time.Now,
	}
}

// Generate produces up to planner.MaxWeeksPerBatch weeks for userID and
// returns the first week's id for the caller to poll readiness against.
func (s *MealPlanService) Generate(ctx context.Context, userID string) (firstWeekID string, err error) {
	release, ok := s.locks.TryLock(userID)
	if !ok {
		return "", ErrConcurrentGenerationInProgress
	}
	defer release()

	favorites, err := s.favorites.FavoriteRecipes(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("command: load favorites: %w", err)
	}

	mains := 0
	for _, r := range favorites {
		if r.RecipeType == events.RecipeTypeMainCourse {
			mains++
		}
	}
	if mains < planner.MinFavoriteMainCourses {
		return "", &planner.InsufficientRecipesError{Kind: string(events.RecipeTypeMainCourse), Required: planner.MinFavoriteMainCourses, Available: mains}
	}

	prefs, err := s.preferences.MealPlanningPreferences(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("command: load preferences: %w", err)
	}

	state, err := s.loadOrStartRotation(ctx, userID, len(favorites))
	if err != nil {
		return "", err
	}

	batchID := uuid.NewString()
	anchor := planner.NextMonday(s.now())
	result := planner.PlanWeeksWithReasoner(ctx, favorites, planner.FromUserPreferences(prefs), state, anchor, planner.MaxWeeksPerBatch, batchID, s.reasoner)
	if len(result.Weeks) == 0 {
		return "", result.FailureReason
	}

	weekData := make([]events.WeekPlanData, len(result.Weeks))
	for i, w := range result.Weeks {
		weekData[i] = events.WeekPlanData{
			WeekID:      w.WeekID,
			StartDate:   w.StartDate,
			EndDate:     w.EndDate,
			IsLocked:    i == 0, // the current week is locked against regeneration
			Assignments: w.Assignments,
		}
	}

	payload := events.MultiWeekMealPlanGeneratedPayload{
		UserID:            userID,
		GenerationBatchID: batchID,
		Weeks:             weekData,
		MaxWeeksPossible:  result.MaxWeeksPossible,
		RotationState:     result.RotationState,
	}

	pending := eventstore.PendingEvent{
		EventName: events.MultiWeekMealPlanGenerated,
		Payload:   payload,
		Metadata:  eventstore.Metadata{UserID: userID},
	}

	// One event, many streams: the same payload is appended to every
	// week's own aggregate stream; each fold keeps only its own
	// WeekPlanData entry (see internal/aggregate/mealplan.go).
	for _, w := range result.Weeks {
		if err := s.store.Append(ctx, eventstore.AggregateMealPlan, w.WeekID, intPtr(0), []eventstore.PendingEvent{pending}); err != nil {
			return "", fmt.Errorf("command: append week %s: %w", w.WeekID, err)
		}
	}

	// The generation lock must not be held across the shopping-list and
	// reminder fan-outs — they read committed state only. Release is
	// idempotent, so the deferred call above stays as the error-path
	// guard.
	release()

	if s.shoppingList != nil {
		for _, w := range result.Weeks {
			ingredients := s.flattenIngredients(ctx, w)
			if err := s.shoppingList.GenerateForWeek(ctx, userID, w.WeekID, w.StartDate, ingredients); err != nil {
				s.log.Warn().Err(err).Str("week_id", w.WeekID).Msg("shopping list generation failed, meal plan still stands")
			}
		}
	}

	if s.reminders != nil {
		for _, w := range weekData {
			s.reminders.ScheduleForWeek(ctx, userID, w)
		}
	}

	return result.Weeks[0].WeekID, nil
}

// RegenerateWeek replans a single already-existing week in place.
func (s *MealPlanService) RegenerateWeek(ctx context.Context, userID, weekID string) error {
	release, ok := s.locks.TryLock(userID)
	if !ok {
		return ErrConcurrentGenerationInProgress
	}
	defer release()

	owner, startDate, isLocked, found, err := s.weeks.WeekOwnerAndStatus(ctx, weekID)
	if err != nil {
		return fmt.Errorf("command: lookup week: %w", err)
	}
	if !found {
		return ErrWeekNotFound
	}
	if owner != userID {
		return ErrForbidden
	}
	if isLocked {
		return ErrWeekLocked
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return fmt.Errorf("command: parse week start: %w", err)
	}
	if !start.After(s.now().Truncate(24 * time.Hour)) {
		return ErrWeekAlreadyStarted
	}

	favorites, err := s.favorites.FavoriteRecipes(ctx, userID)
	if err != nil {
		return fmt.Errorf("command: load favorites: %w", err)
	}
	prefs, err := s.preferences.MealPlanningPreferences(ctx, userID)
	if err != nil {
		return fmt.Errorf("command: load preferences: %w", err)
	}
	state, err := s.loadOrStartRotation(ctx, userID, len(favorites))
	if err != nil {
		return err
	}

	loaded, err := s.store.Load(ctx, weekID)
	if err != nil {
		return fmt.Errorf("command: load week stream: %w", err)
	}
	expected := loaded.CurrentVersion

	plan, err := planner.PlanWeekWithReasoner(ctx, favorites, planner.FromUserPreferences(prefs), state, start, weekID, uuid.NewString(), s.reasoner)
	if err != nil {
		return err
	}

	payload := events.SingleWeekRegeneratedPayload{
		Assignments:   plan.Assignments,
		RotationState: state.Snapshot(),
	}
	pending := eventstore.PendingEvent{
		EventName: events.SingleWeekRegenerated,
		Payload:   payload,
		Metadata:  eventstore.Metadata{UserID: userID},
	}
	if err := s.store.Append(ctx, eventstore.AggregateMealPlan, weekID, &expected, []eventstore.PendingEvent{pending}); err != nil {
		return fmt.Errorf("command: append regenerated week: %w", err)
	}

	if s.shoppingList != nil {
		ingredients := s.flattenIngredients(ctx, plan)
		if err := s.shoppingList.GenerateForWeek(ctx, userID, weekID, plan.StartDate, ingredients); err != nil {
			s.log.Warn().Err(err).Str("week_id", weekID).Msg("shopping list generation failed, week still stands")
		}
	}

	return nil
}

func (s *MealPlanService) loadOrStartRotation(ctx context.Context, userID string, totalFavorites int) (*rotation.State, error) {
	data, err := s.rotations.RotationState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("command: load rotation state: %w", err)
	}
	if data == nil {
		state, err := rotation.New(totalFavorites, s.now())
		if err != nil {
			return nil, err
		}
		return state, nil
	}
	state := rotation.Restore(*data)
	state.TotalFavoriteCount = totalFavorites
	return state, nil
}

// flattenIngredients builds the ingredient list handed
// to the shopping-list collaborator is obtained by flattening every
// assignment's recipe ingredients. The recipes read table deliberately
// doesn't carry ingredients (internal/projection/recipe.go) — the full
// recipe body only ever lives in its own event stream — so this rebuilds
// each distinct Recipe aggregate referenced by the week directly from
// the store rather than adding a second, narrower query path. Costed
// once per generated week, not per assignment.
func (s *MealPlanService) flattenIngredients(ctx context.Context, w planner.WeekMealPlan) []events.Ingredient {
	seen := make(map[string]struct{})
	var out []events.Ingredient
	for _, a := range w.Assignments {
		for _, recipeID := range []string{a.RecipeID, a.AccompanimentRecipeID} {
			if recipeID == "" {
				continue
			}
			if _, ok := seen[recipeID]; ok {
				continue
			}
			seen[recipeID] = struct{}{}

			recipe := aggregate.NewRecipe(recipeID)
			if _, err := aggregate.Rebuild(ctx, s.store, recipeID, recipe); err != nil {
				s.log.Warn().Err(err).Str("recipe_id", recipeID).Msg("could not load recipe for shopping list, skipping its ingredients")
				continue
			}
			out = append(out, recipe.Ingredients...)
		}
	}
	return out
}

func intPtr(v int) *int { return &v }
