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

// Package middleware adapts internal/auth's session tokens into gin
// request context for handlers to read back via GetUserFromContext —
// the session/cookie transport itself lives outside this service; this
// is the thin bearer-token adapter the command layer needs to know who
// is calling.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imkitchen/imkitchen/internal/auth"
)

const contextKey = "authenticated_user"

// AuthenticatedUser is what a handler reads back via GetUserFromContext.
type AuthenticatedUser struct {
	ID      string
	Email   string
	IsAdmin bool
}

// AuthMiddleware rejects requests with no valid `Authorization: Bearer
// <token>` header and stashes the parsed claims in gin context otherwise.
func AuthMiddleware(issuer *auth.SessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(contextKey, AuthenticatedUser{ID: claims.UserID, Email: claims.Email, IsAdmin: claims.IsAdmin})
		c.Next()
	}
}

// GetUserFromContext retrieves the user AuthMiddleware attached to c.
func GetUserFromContext(c *gin.Context) (AuthenticatedUser, bool) {
	raw, ok := c.Get(contextKey)
	if !ok {
		return AuthenticatedUser{}, false
	}
	user, ok := raw.(AuthenticatedUser)
	return user, ok
}
