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
)

type profileHandler struct {
	users *command.UserService
	log   zerolog.Logger
}

func (h *profileHandler) registerRoutes(rg *gin.RouterGroup) {
	rg.PUT("/meal-planning-preferences", h.updatePreferences)
}

// updatePreferences implements PUT /profile/meal-planning-preferences
//: a validation failure reports a per-field error map
// built by writeValidationError, not the flattened string
// ShouldBindJSON's error would otherwise produce.
func (h *profileHandler) updatePreferences(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, err)
		return
	}

	if err := h.users.UpdatePreferences(c.Request.Context(), user.ID, req.toPayload()); err != nil {
		writeCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
