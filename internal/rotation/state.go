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

// Package rotation implements the per-user rotation tracker: which
// favorites have been used within the current cycle, per course, plus
// the cuisine-variety and complexity-spacing smoothing signals the
// planner consults.
package rotation

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/imkitchen/imkitchen/internal/events"
)

// ErrZeroFavorites is returned by New when constructing a tracker meant
// to back an actual planning run — a zero favorite count is legal only
// for a restored, not-yet-started tracker.
var ErrZeroFavorites = errors.New("rotation: total_favorite_count must be > 0 to start planning")

// State is the in-memory rotation tracker. Use Snapshot/Restore to move
// it to and from the RotationStateData wire shape.
type State struct {
	CycleNumber         int
	CycleStartedAt      time.Time
	usedMain            map[string]struct{}
	usedAppetizer       map[string]struct{}
	usedDessert         map[string]struct{}
	CuisineUsageCount   map[string]int
	LastComplexMealDate string // ISO 8601 date, empty if unset
	TotalFavoriteCount  int
}

// New starts a fresh tracker for planning. totalFavoriteCount must be > 0.
func New(totalFavoriteCount int, now time.Time) (*State, error) {
	if totalFavoriteCount == 0 {
		return nil, ErrZeroFavorites
	}
	return &State{
		CycleNumber:        1,
		CycleStartedAt:     now,
		usedMain:           map[string]struct{}{},
		usedAppetizer:      map[string]struct{}{},
		usedDessert:        map[string]struct{}{},
		CuisineUsageCount:  map[string]int{},
		TotalFavoriteCount: totalFavoriteCount,
	}, nil
}

// Restore rebuilds a tracker from a persisted snapshot. An empty used set
// and a zero favorite count are both legal for a restored, not-yet-started
// tracker — only the planning-start constructor rejects
// zero favorites.
func Restore(data events.RotationStateData) *State {
	s := &State{
		CycleNumber:         data.CycleNumber,
		CycleStartedAt:      data.CycleStartedAt,
		usedMain:            toSet(data.UsedMainCourseIDs),
		usedAppetizer:       toSet(data.UsedAppetizerIDs),
		usedDessert:         toSet(data.UsedDessertIDs),
		CuisineUsageCount:   map[string]int{},
		LastComplexMealDate: data.LastComplexMealDate,
		TotalFavoriteCount:  data.TotalFavoriteCount,
	}
	for k, v := range data.CuisineUsageCount {
		s.CuisineUsageCount[k] = v
	}
	return s
}

func toSet(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func fromSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

// Snapshot serializes the tracker to its wire shape.
func (s *State) Snapshot() events.RotationStateData {
	cuisine := make(map[string]int, len(s.CuisineUsageCount))
	for k, v := range s.CuisineUsageCount {
		cuisine[k] = v
	}
	return events.RotationStateData{
		CycleNumber:         s.CycleNumber,
		CycleStartedAt:      s.CycleStartedAt,
		UsedMainCourseIDs:   fromSet(s.usedMain),
		UsedAppetizerIDs:    fromSet(s.usedAppetizer),
		UsedDessertIDs:      fromSet(s.usedDessert),
		CuisineUsageCount:   cuisine,
		LastComplexMealDate: s.LastComplexMealDate,
		TotalFavoriteCount:  s.TotalFavoriteCount,
	}
}

// MarshalJSON / UnmarshalJSON keep the tracker JSON round-trippable.
func (s *State) MarshalJSON() ([]byte, error)  { return json.Marshal(s.Snapshot()) }
func (s *State) UnmarshalJSON(data []byte) error {
	var d events.RotationStateData
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*s = *Restore(d)
	return nil
}

func (s *State) setFor(course events.CourseType) map[string]struct{} {
	switch course {
	case events.CourseMainCourse:
		return s.usedMain
	case events.CourseAppetizer:
		return s.usedAppetizer
	case events.CourseDessert:
		return s.usedDessert
	default:
		return nil
	}
}

// MarkUsed adds recipeID to the used set for course. No-op if already
// present.
func (s *State) MarkUsed(course events.CourseType, recipeID string) {
	set := s.setFor(course)
	if set == nil {
		return
	}
	set[recipeID] = struct{}{}
}

// IsUsed reports whether recipeID has been used for course this cycle.
func (s *State) IsUsed(course events.CourseType, recipeID string) bool {
	set := s.setFor(course)
	if set == nil {
		return false
	}
	_, ok := set[recipeID]
	return ok
}

// UsedCount returns how many distinct recipe ids have been used for course.
func (s *State) UsedCount(course events.CourseType) int {
	set := s.setFor(course)
	return len(set)
}

// ShouldResetCycle reports whether the used set for course has exhausted
// the available favorites for that course.
func (s *State) ShouldResetCycle(course events.CourseType, totalFavoritesForCourse int) bool {
	return s.UsedCount(course) >= totalFavoritesForCourse
}

// ResetCourse clears only one course's used set — the scoped reset the
// planner applies when a side-course pool runs dry mid-week.
func (s *State) ResetCourse(course events.CourseType) {
	switch course {
	case events.CourseMainCourse:
		s.usedMain = map[string]struct{}{}
	case events.CourseAppetizer:
		s.usedAppetizer = map[string]struct{}{}
	case events.CourseDessert:
		s.usedDessert = map[string]struct{}{}
	}
}

// ResetCycle clears all per-course used sets, increments the cycle number,
// and restamps cycle_started_at. cuisine_usage_count and
// last_complex_meal_date are left untouched; those are per-week
// smoothing signals, not cycle state.
func (s *State) ResetCycle(now time.Time) {
	s.usedMain = map[string]struct{}{}
	s.usedAppetizer = map[string]struct{}{}
	s.usedDessert = map[string]struct{}{}
	s.CycleNumber++
	s.CycleStartedAt = now
}

// RecipeRef is the minimal shape the rotation filter needs from a recipe.
type RecipeRef interface {
	RecipeID() string
}

// FilterAvailable returns the ids in allFavorites not present in the used
// set for course.
func FilterAvailable[T RecipeRef](s *State, allFavorites []T, course events.CourseType) []T {
	set := s.setFor(course)
	out := make([]T, 0, len(allFavorites))
	for _, fav := range allFavorites {
		if _, used := set[fav.RecipeID()]; !used {
			out = append(out, fav)
		}
	}
	return out
}

// IncrementCuisine bumps the per-cuisine usage counter used by the
// variety-weighting score in the planner.
func (s *State) IncrementCuisine(cuisine string) {
	if cuisine == "" {
		return
	}
	s.CuisineUsageCount[cuisine]++
}

// SetLastComplexMealDate records the most recent complex main course date
// (ISO 8601), used by the avoid-consecutive-complex spacing rule.
func (s *State) SetLastComplexMealDate(date string) {
	s.LastComplexMealDate = date
}
