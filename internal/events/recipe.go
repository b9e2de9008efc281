package events

const (
	RecipeCreated         = "RecipeCreated"
	RecipeUpdated         = "RecipeUpdated"
	RecipeFavorited       = "RecipeFavorited"
	RecipeUnfavorited     = "RecipeUnfavorited"
	RecipeSharingToggled  = "RecipeSharingToggled"
	RecipeDeleted         = "RecipeDeleted"
)

// RecipeType is one of the three course types the planner assigns.
type RecipeType string

const (
	RecipeTypeAppetizer  RecipeType = "appetizer"
	RecipeTypeMainCourse RecipeType = "main_course"
	RecipeTypeDessert    RecipeType = "dessert"
)

// AccompanimentCategory classifies a recipe that is itself a side dish.
type AccompanimentCategory string

const (
	AccompanimentPasta    AccompanimentCategory = "pasta"
	AccompanimentRice     AccompanimentCategory = "rice"
	AccompanimentSalad    AccompanimentCategory = "salad"
	AccompanimentBread    AccompanimentCategory = "bread"
	AccompanimentVegetable AccompanimentCategory = "vegetable"
	AccompanimentFries    AccompanimentCategory = "fries"
	AccompanimentOther    AccompanimentCategory = "other"
)

// Complexity drives the avoid-consecutive-complex spacing rule.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityComplex Complexity = "complex"
)

type Ingredient struct {
	Name     string  `msgpack:"name"`
	Quantity float64 `msgpack:"quantity"`
	Unit     string  `msgpack:"unit"`
}

type InstructionStep struct {
	StepNumber      int    `msgpack:"step_number"`
	InstructionText string `msgpack:"instruction_text"`
	TimerMinutes    int    `msgpack:"timer_minutes,omitempty"`
}

// RecipeCreatedPayload is the source of truth for recipe creation.
// recipe_id is the stream's aggregate id, not stored here.
type RecipeCreatedPayload struct {
	UserID                  string                  `msgpack:"user_id"`
	Title                   string                  `msgpack:"title"`
	RecipeType              RecipeType              `msgpack:"recipe_type"`
	Ingredients             []Ingredient            `msgpack:"ingredients"`
	Instructions            []InstructionStep       `msgpack:"instructions"`
	PrepMinutes             int                     `msgpack:"prep_minutes"`
	CookMinutes             int                     `msgpack:"cook_minutes"`
	AdvancePrepHours        int                     `msgpack:"advance_prep_hours,omitempty"`
	Cuisine                 string                  `msgpack:"cuisine,omitempty"`
	DietaryTags             []string                `msgpack:"dietary_tags,omitempty"`
	Complexity              Complexity              `msgpack:"complexity,omitempty"`
	AcceptsAccompaniment    bool                    `msgpack:"accepts_accompaniment,omitempty"`
	PreferredAccompaniments []AccompanimentCategory `msgpack:"preferred_accompaniments,omitempty"`
	AccompanimentCategory   AccompanimentCategory   `msgpack:"accompaniment_category,omitempty"`
	IsFavorite              bool                    `msgpack:"is_favorite,omitempty"`
	IsShared                bool                    `msgpack:"is_shared,omitempty"`
}

// RecipeUpdatedPayload carries the full post-update field set (simpler
// fold logic than a sparse patch, matching RecipeCreatedPayload's shape).
type RecipeUpdatedPayload struct {
	Title                   string                  `msgpack:"title"`
	Ingredients             []Ingredient            `msgpack:"ingredients"`
	Instructions            []InstructionStep       `msgpack:"instructions"`
	PrepMinutes             int                     `msgpack:"prep_minutes"`
	CookMinutes             int                     `msgpack:"cook_minutes"`
	AdvancePrepHours        int                     `msgpack:"advance_prep_hours,omitempty"`
	Cuisine                 string                  `msgpack:"cuisine,omitempty"`
	DietaryTags             []string                `msgpack:"dietary_tags,omitempty"`
	Complexity              Complexity              `msgpack:"complexity,omitempty"`
	AcceptsAccompaniment    bool                    `msgpack:"accepts_accompaniment,omitempty"`
	PreferredAccompaniments []AccompanimentCategory `msgpack:"preferred_accompaniments,omitempty"`
	AccompanimentCategory   AccompanimentCategory   `msgpack:"accompaniment_category,omitempty"`
}

type RecipeFavoritedPayload struct{}
type RecipeUnfavoritedPayload struct{}

type RecipeSharingToggledPayload struct {
	IsShared bool `msgpack:"is_shared"`
}

type RecipeDeletedPayload struct{}
