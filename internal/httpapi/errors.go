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
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/imkitchen/imkitchen/internal/auth"
	"github.com/imkitchen/imkitchen/internal/command"
	"github.com/imkitchen/imkitchen/internal/planner"
)

// writeCommandError maps a command-layer error onto its HTTP status
// and body, closing over the handful of sentinel errors every service
// surfaces.
func writeCommandError(c *gin.Context, err error) {
	var insufficient *planner.InsufficientRecipesError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "InsufficientRecipes",
			"kind":      insufficient.Kind,
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})
	case errors.Is(err, command.ErrConcurrentGenerationInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "ConcurrentGenerationInProgress"})
	case errors.Is(err, command.ErrForbidden), errors.Is(err, command.ErrWeekLocked):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, command.ErrWeekAlreadyStarted):
		c.JSON(http.StatusBadRequest, gin.H{"error": "WeekAlreadyStarted"})
	case errors.Is(err, command.ErrWeekNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "WeekNotFound"})
	case errors.Is(err, command.ErrNotificationUnavailable):
		// Same response whether the id doesn't exist or isn't owned by
		// the caller.
		c.JSON(http.StatusNotFound, gin.H{"error": "NotificationUnavailable"})
	case errors.Is(err, command.ErrInvalidTransition), errors.Is(err, command.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, command.ErrEmailAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": "EmailAlreadyRegistered"})
	case errors.Is(err, auth.ErrPasswordMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "InvalidCredentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// writeValidationError implements the 400-with-per-field-error-map
// contract for request-body validation: a
// validator.ValidationErrors from gin's ShouldBindJSON is rendered as
// one message per offending field, keyed by its JSON name, rather than
// the single flattened string err.Error() would produce. Anything that
// isn't a validator error — malformed JSON, a wrong field type — falls
// back to a single "_"-keyed message, since there's no field to key it by.
func writeValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"_": err.Error()}})
		return
	}

	fields := make(gin.H, len(verrs))
	for _, fe := range verrs {
		fields[jsonFieldName(fe)] = validationMessage(fe)
	}
	c.JSON(http.StatusBadRequest, gin.H{"errors": fields})
}

// jsonFieldName lowercases a validator field name to match the json tag
// convention this package's request DTOs use (dto.go), since validator
// reports the Go struct field name, not the tag, when no custom tag
// name func is registered on the binding engine.
func jsonFieldName(fe validator.FieldError) string {
	return toSnakeCase(fe.Field())
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
