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

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/command"
	"github.com/imkitchen/imkitchen/internal/httpapi/middleware"
	"github.com/imkitchen/imkitchen/internal/query"
)

type mealPlanHandler struct {
	plans  *command.MealPlanService
	reader *query.Reader
	log    zerolog.Logger
}

func (h *mealPlanHandler) registerRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate", h.generate)
	rg.POST("/regenerate", h.generate)
	rg.GET("/check-ready/:id", h.checkReady)
	rg.GET("/weeks", h.listWeeks)
	rg.POST("/week/:week_id/regenerate", h.regenerateWeek)
}

// listWeeks backs GET /plan/weeks: the caller's generated weeks, newest
// first, including archived batches when ?include_archived=true.
func (h *mealPlanHandler) listWeeks(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	includeArchived := c.Query("include_archived") == "true"
	weeks, err := h.reader.ListWeeksForUser(c.Request.Context(), user.ID, includeArchived)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

// generate backs both POST /plan/generate and POST /plan/regenerate —
// the same contract either way (enter the per-user lock, return a
// polling handle): command.MealPlanService exposes a single Generate
// that replans the user's whole upcoming batch.
func (h *mealPlanHandler) generate(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	firstWeekID, err := h.plans.Generate(c.Request.Context(), user.ID)
	if err != nil {
		writeCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"first_week_id": firstWeekID})
}

// checkReady implements GET /plan/check-ready/:id: the client polls
// this with the first week id returned by generate, until every week in
// that generation batch has its full 21 assignments.
func (h *mealPlanHandler) checkReady(c *gin.Context) {
	weekID := c.Param("id")

	weeksReady, weeksTotal, found, err := h.reader.BatchReadiness(c.Request.Context(), weekID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "WeekNotFound"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ready":       weeksReady == weeksTotal && weeksTotal > 0,
		"weeks_ready": weeksReady,
		"weeks_total": weeksTotal,
	})
}

// regenerateWeek implements POST /plan/week/:week_id/regenerate.
func (h *mealPlanHandler) regenerateWeek(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	weekID := c.Param("week_id")
	if err := h.plans.RegenerateWeek(c.Request.Context(), user.ID, weekID); err != nil {
		writeCommandError(c, err)
		return
	}

	assignments, err := h.reader.AssignmentsForWeek(c.Request.Context(), weekID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"week_id": weekID, "assignments": assignments})
}
