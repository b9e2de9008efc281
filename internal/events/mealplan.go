package events

import "time"

const (
	MultiWeekMealPlanGenerated = "MultiWeekMealPlanGenerated"
	SingleWeekRegenerated      = "SingleWeekRegenerated"
)

// CourseType is one of the three daily course slots.
type CourseType string

const (
	CourseAppetizer  CourseType = "appetizer"
	CourseMainCourse CourseType = "main_course"
	CourseDessert    CourseType = "dessert"
)

// RotationStateData is the JSON/msgpack-serializable snapshot of
// rotation.State.
type RotationStateData struct {
	CycleNumber         int            `msgpack:"cycle_number"`
	CycleStartedAt      time.Time      `msgpack:"cycle_started_at"`
	UsedMainCourseIDs   []string       `msgpack:"used_main_course_ids"`
	UsedAppetizerIDs    []string       `msgpack:"used_appetizer_ids"`
	UsedDessertIDs      []string       `msgpack:"used_dessert_ids"`
	CuisineUsageCount   map[string]int `msgpack:"cuisine_usage_count"`
	LastComplexMealDate string         `msgpack:"last_complex_meal_date,omitempty"` // ISO 8601 date, empty if unset
	TotalFavoriteCount  int            `msgpack:"total_favorite_count"`
}

// MealAssignmentData is one (date, course) slot of a generated week.
type MealAssignmentData struct {
	Date                  string     `msgpack:"date"` // ISO 8601
	CourseType            CourseType `msgpack:"course_type"`
	RecipeID              string     `msgpack:"recipe_id"`
	PrepRequired          bool       `msgpack:"prep_required"`
	AssignmentReasoning   string     `msgpack:"assignment_reasoning,omitempty"`
	AccompanimentRecipeID string     `msgpack:"accompaniment_recipe_id,omitempty"`
}

// WeekPlanData is one generated week, addressed by its own WeekID — which
// doubles as the aggregate_id of the MealPlan stream it belongs to.
type WeekPlanData struct {
	WeekID      string               `msgpack:"week_id"`
	StartDate   string               `msgpack:"start_date"` // Monday, ISO 8601
	EndDate     string               `msgpack:"end_date"`   // Sunday, ISO 8601
	IsLocked    bool                 `msgpack:"is_locked"`
	Assignments []MealAssignmentData `msgpack:"assignments"`
}

// MultiWeekMealPlanGeneratedPayload is appended, unchanged, to every week
// stream the batch produced — each week's fold selects the WeekPlanData
// entry whose WeekID equals its own aggregate id: one event, many
// streams.
type MultiWeekMealPlanGeneratedPayload struct {
	UserID            string            `msgpack:"user_id"`
	GenerationBatchID string            `msgpack:"generation_batch_id"`
	Weeks             []WeekPlanData    `msgpack:"weeks"`
	MaxWeeksPossible  int               `msgpack:"max_weeks_possible"`
	RotationState     RotationStateData `msgpack:"rotation_state"`
}

// SingleWeekRegeneratedPayload replaces one week's assignments in place;
// the stream's aggregate id is unchanged, its version increments.
type SingleWeekRegeneratedPayload struct {
	Assignments   []MealAssignmentData `msgpack:"assignments"`
	RotationState RotationStateData    `msgpack:"rotation_state"`
}
