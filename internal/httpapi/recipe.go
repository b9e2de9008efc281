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
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/httpapi/middleware"
)

// recipeHandler exposes the recipe-authoring CRUD contract: the
// planner only consumes favorites through command.FavoritesReader, but
// those favorites need somewhere to come from, so this thin passthrough
// onto command.RecipeService is part of the same HTTP surface.
type recipeHandler struct {
	recipes *command.RecipeService
	log     zerolog.Logger
}

func (h *recipeHandler) registerRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.PUT("/:id", h.update)
	rg.POST("/:id/favorite", h.favorite)
	rg.POST("/:id/unfavorite", h.unfavorite)
	rg.PUT("/:id/sharing", h.toggleSharing)
	rg.DELETE("/:id", h.delete)
}

func (h *recipeHandler) create(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipeID, err := h.recipes.Create(c.Request.Context(), user.ID, req.toPayload())
	if err != nil {
		writeCommandError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe_id": recipeID})
}

func (h *recipeHandler) update(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload := events.RecipeUpdatedPayload{
		Title:                   req.Title,
		Ingredients:             req.Ingredients,
		Instructions:            req.Instructions,
		PrepMinutes:             req.PrepMinutes,
		CookMinutes:             req.CookMinutes,
		AdvancePrepHours:        req.AdvancePrepHours,
		Cuisine:                 req.Cuisine,
		DietaryTags:             req.DietaryTags,
		Complexity:              req.Complexity,
		AcceptsAccompaniment:    req.AcceptsAccompaniment,
		PreferredAccompaniments: req.PreferredAccompaniments,
		AccompanimentCategory:   req.AccompanimentCategory,
	}

	if err := h.recipes.Update(c.Request.Context(), user.ID, c.Param("id"), payload); err != nil {
		writeCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *recipeHandler) favorite(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	if err := h.recipes.Favorite(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		writeCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *recipeHandler) unfavorite(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	if err := h.recipes.Unfavorite(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		writeCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *recipeHandler) toggleSharing(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req struct {
		IsShared bool `json:"is_shared"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.recipes.ToggleSharing(c.Request.Context(), user.ID, c.Param("id"), req.IsShared); err != nil {
		writeCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *recipeHandler) delete(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		writeCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
