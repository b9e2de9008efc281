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

// MealPlanStatus is a week's lifecycle state.
type MealPlanStatus string

const (
	MealPlanActive   MealPlanStatus = "active"
	MealPlanArchived MealPlanStatus = "archived"
)

// MealPlan is the fold target for one week's MealPlan aggregate.
// The generate command appends the same batch payload (containing every
// generated week) to each week's own stream; each stream's fold picks
// out only the WeekPlanData entry whose WeekID matches its own
// aggregate id.
type MealPlan struct {
	ID                string
	UserID            string
	StartDate         string
	EndDate            string
	Status            MealPlanStatus
	IsLocked          bool
	GenerationBatchID string
	RotationState     events.RotationStateData
	Assignments       []events.MealAssignmentData
	Version           int
}

func NewMealPlan(id string) *MealPlan {
	return &MealPlan{ID: id, Status: MealPlanActive}
}

func (m *MealPlan) Apply(event eventstore.Event) error {
	switch event.EventName {
	case events.MultiWeekMealPlanGenerated:
		var p events.MultiWeekMealPlanGeneratedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		var mine *events.WeekPlanData
		for i := range p.Weeks {
			if p.Weeks[i].WeekID == m.ID {
				mine = &p.Weeks[i]
				break
			}
		}
		if mine == nil {
			return fmt.Errorf("aggregate mealplan: %s not present in generated batch %s", m.ID, p.GenerationBatchID)
		}
		m.UserID = p.UserID
		m.StartDate = mine.StartDate
		m.EndDate = mine.EndDate
		m.IsLocked = mine.IsLocked
		m.GenerationBatchID = p.GenerationBatchID
		m.RotationState = p.RotationState
		m.Assignments = mine.Assignments
		m.Status = MealPlanActive

	case events.SingleWeekRegenerated:
		var p events.SingleWeekRegeneratedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}
		m.Assignments = p.Assignments
		m.RotationState = p.RotationState

	default:
		return fmt.Errorf("aggregate mealplan: unhandled event %q", event.EventName)
	}

	m.Version = event.Version
	return nil
}
