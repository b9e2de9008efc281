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

	"github.com/imkitchen/imkitchen/internal/auth"
	"github.com/imkitchen/imkitchen/internal/command"
	"github.com/imkitchen/imkitchen/internal/httpapi/middleware"
	"github.com/imkitchen/imkitchen/internal/query"
	"github.com/imkitchen/imkitchen/internal/store"
)

// Dependencies is everything the router needs to wire its handlers.
// Built in cmd/server/main.go once all the command services and the
// query facade exist.
type Dependencies struct {
	DB            *store.DB
	Users         *command.UserService
	Recipes       *command.RecipeService
	Plans         *command.MealPlanService
	Notifications *command.NotificationService
	Contact       *command.ContactService
	Reader        *query.Reader
	Issuer        *auth.SessionIssuer
	Log           zerolog.Logger
}

// NewRouter builds the gin engine: a public health check, a public
// auth group, and every other endpoint behind AuthMiddleware.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		if err := deps.DB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")

	authHandler := &authHandler{users: deps.Users, log: deps.Log}
	authHandler.registerRoutes(v1.Group("/auth"))

	contactHandler := &contactHandler{contact: deps.Contact, reader: deps.Reader, log: deps.Log}
	contactHandler.registerPublicRoutes(v1.Group("/contact"))

	protectedV1 := v1.Group("")
	protectedV1.Use(middleware.AuthMiddleware(deps.Issuer))

	recipeHandler := &recipeHandler{recipes: deps.Recipes, log: deps.Log}
	recipeHandler.registerRoutes(protectedV1.Group("/recipes"))

	dashboardHandler := &dashboardHandler{reader: deps.Reader, log: deps.Log}
	dashboardHandler.registerRoutes(protectedV1.Group("/dashboard"))

	contactHandler.registerAdminRoutes(protectedV1.Group("/admin/contact-messages"))

	// The planning, profile, and notification contracts keep their
	// literal top-level paths (/plan/..., /profile/...,
	// /api/notifications/...) rather than nesting under /api/v1 — the
	// service worker and PWA clients address them by these exact paths.
	protectedRoot := router.Group("")
	protectedRoot.Use(middleware.AuthMiddleware(deps.Issuer))

	profileHandler := &profileHandler{users: deps.Users, log: deps.Log}
	profileHandler.registerRoutes(protectedRoot.Group("/profile"))

	planHandler := &mealPlanHandler{plans: deps.Plans, reader: deps.Reader, log: deps.Log}
	planHandler.registerRoutes(protectedRoot.Group("/plan"))

	notificationHandler := &notificationHandler{notifications: deps.Notifications, log: deps.Log}
	notificationHandler.registerRoutes(protectedRoot.Group("/api/notifications"))

	return router
}
