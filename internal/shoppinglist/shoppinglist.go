// Package shoppinglist is the thin boundary to the shopping-list
// collaborator: a synchronous command fired once per generated week,
// carrying the flattened ingredient list. The aggregation itself
// (grouping, pantry matching, list UI) lives in the external service.
// This package only logs the command, the same
// boundary internal/push draws around the Web Push encryption it
// doesn't implement.
package shoppinglist

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/command"
	"github.com/imkitchen/imkitchen/internal/events"
)

// LoggingCollaborator satisfies command.ShoppingListCollaborator by
// recording the GenerateShoppingList command, without
// performing any aggregation. A real deployment swaps this for an
// adapter that posts to the actual shopping-list service.
type LoggingCollaborator struct {
	log zerolog.Logger
}

// NewLoggingCollaborator wires the collaborator's logger.
func NewLoggingCollaborator(log zerolog.Logger) *LoggingCollaborator {
	return &LoggingCollaborator{log: log.With().Str("component", "shoppinglist").Logger()}
}

var _ command.ShoppingListCollaborator = (*LoggingCollaborator)(nil)

// GenerateForWeek records the command; it never returns an error since
// a shopping-list failure must not abort the meal plan that triggered it.
func (c *LoggingCollaborator) GenerateForWeek(ctx context.Context, userID, weekID, weekStartDate string, ingredients []events.Ingredient) error {
	c.log.Info().
		Str("user_id", userID).
		Str("week_id", weekID).
		Str("week_start_date", weekStartDate).
		Int("ingredient_count", len(ingredients)).
		Msg("GenerateShoppingList")
	return nil
}
