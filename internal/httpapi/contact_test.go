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

package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/auth"
	"github.com/imkitchen/imkitchen/internal/command"
	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/httpapi"
	"github.com/imkitchen/imkitchen/internal/query"
	"github.com/imkitchen/imkitchen/internal/testdb"
)

func newContactRouter(t *testing.T) (*gin.Engine, *auth.SessionIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	issuer := auth.NewSessionIssuer([]byte("test-secret"), time.Hour)
	reader := query.NewReader(db)

	deps := httpapi.Dependencies{
		DB:      db,
		Contact: command.NewContactService(store, nil, "", zerolog.Nop()),
		Reader:  reader,
		Issuer:  issuer,
		Log:     zerolog.Nop(),
	}
	return httpapi.NewRouter(deps), issuer
}

func TestContactSubmit_PublicAndValidated(t *testing.T) {
	router, _ := newContactRouter(t)

	body := `{"name":"Ada","email":"ada@example.com","subject":"Hi","body":"Love the planner"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Missing email yields the per-field validation map, not a flat string.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(`{"subject":"Hi","body":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email"`)
}

func TestContactAdminInbox_RequiresAdmin(t *testing.T) {
	router, issuer := newContactRouter(t)

	token, err := issuer.Issue(auth.Claims{UserID: "user-1", Email: "user-1@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/contact-messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, err := issuer.Issue(auth.Claims{UserID: "admin-1", Email: "admin@example.com", IsAdmin: true})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/contact-messages", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
