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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/httpapi/middleware"
	"github.com/imkitchen/imkitchen/internal/query"
)

type dashboardHandler struct {
	reader *query.Reader
	log    zerolog.Logger
}

func (h *dashboardHandler) registerRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.dashboard)
}

// dashboard backs GET /api/v1/dashboard: today's meals, the open prep
// task list, and the denormalized metrics row, all straight reads off
// the projected tables — no joins back to the event log.
func (h *dashboardHandler) dashboard(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	ctx := c.Request.Context()
	today := time.Now().Format("2006-01-02")

	meals, err := h.reader.DashboardMealsForDate(ctx, user.ID, today)
	if err != nil {
		h.log.Error().Err(err).Msg("dashboard meals query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	prepTasks, err := h.reader.PendingPrepTasks(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("prep tasks query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	metrics, err := h.reader.GetDashboardMetrics(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("dashboard metrics query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	rotation, err := h.reader.GetRotationProgress(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("rotation progress query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":              today,
		"meals":             meals,
		"prep_tasks":        prepTasks,
		"metrics":           metrics,
		"rotation_progress": rotation,
	})
}
