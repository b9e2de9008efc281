package planner

import (
	"errors"
	"fmt"
)

// ErrWeekStartNotMonday rejects a week anchor that is not a Monday.
var ErrWeekStartNotMonday = errors.New("planner: week_start_monday must fall on a Monday")

// InsufficientRecipesError carries the {kind, required, available}
// triple the HTTP layer renders for this precondition failure.
type InsufficientRecipesError struct {
	Kind      string
	Required  int
	Available int
}

func (e *InsufficientRecipesError) Error() string {
	return fmt.Sprintf("planner: insufficient recipes: kind=%s required=%d available=%d", e.Kind, e.Required, e.Available)
}

// AsInsufficientRecipes unwraps err into an *InsufficientRecipesError, if any.
func AsInsufficientRecipes(err error) (*InsufficientRecipesError, bool) {
	var target *InsufficientRecipesError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
