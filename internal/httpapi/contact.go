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

type contactHandler struct {
	contact *command.ContactService
	reader  *query.Reader
	log     zerolog.Logger
}

// registerPublicRoutes wires the unauthenticated contact-form endpoint.
func (h *contactHandler) registerPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.submit)
}

// registerAdminRoutes wires the admin inbox. Every route still runs
// behind AuthMiddleware; requireAdmin rejects non-admin callers.
func (h *contactHandler) registerAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("/:id/read", h.markRead)
	rg.POST("/:id/resolve", h.resolve)
}

func (h *contactHandler) submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, err)
		return
	}

	id, err := h.contact.Submit(c.Request.Context(), req.Name, req.Email, req.Subject, req.Body)
	if err != nil {
		writeCommandError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *contactHandler) list(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	messages, err := h.reader.ListContactMessages(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *contactHandler) markRead(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	if err := h.contact.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		writeCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *contactHandler) resolve(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	if err := h.contact.Resolve(c.Request.Context(), c.Param("id")); err != nil {
		writeCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// requireAdmin aborts with 403 unless the authenticated caller is an
// admin. Returns whether the request may proceed.
func requireAdmin(c *gin.Context) bool {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return false
	}
	if !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return false
	}
	return true
}
