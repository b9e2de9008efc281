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

	"github.com/imkitchen/imkitchen/internal/command"
	"github.com/imkitchen/imkitchen/internal/httpapi/middleware"
)

type notificationHandler struct {
	notifications *command.NotificationService
	log           zerolog.Logger
}

func (h *notificationHandler) registerRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/complete", h.complete)
	rg.POST("/:id/dismiss", h.dismiss)
	rg.POST("/:id/snooze", h.snooze)
}

func (h *notificationHandler) complete(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	if err := h.notifications.Complete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		writeCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *notificationHandler) dismiss(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	if err := h.notifications.Dismiss(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		writeCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// snooze implements POST /api/notifications/:id/snooze. Ownership is
// checked by the command layer itself — this handler
// never looks the notification up first, closing the enumeration
// channel a pre-lookup would open.
func (h *notificationHandler) snooze(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req snoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	until := time.Now().Add(time.Duration(req.DurationHours) * time.Hour)
	if err := h.notifications.Snooze(c.Request.Context(), user.ID, c.Param("id"), until); err != nil {
		writeCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
