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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/auth"
	"github.com/imkitchen/imkitchen/internal/command"
	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/events"
	"github.com/imkitchen/imkitchen/internal/httpapi"
	"github.com/imkitchen/imkitchen/internal/projection"
	"github.com/imkitchen/imkitchen/internal/query"
	"github.com/imkitchen/imkitchen/internal/testdb"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.SessionIssuer, eventstore.Store, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	issuer := auth.NewSessionIssuer([]byte("test-secret"), time.Hour)
	reader := query.NewReader(db)

	// Ownership is checked against the notifications read table, so the
	// returned project func drains appended reminder events into it.
	for _, id := range []string{"user-1", "someone-else"} {
		_, err := db.Exec(`INSERT INTO users (id, email, first_name, last_name, status, updated_at) VALUES (?, ?, 'A', 'B', 'active', ?)`,
			id, id+"@example.com", time.Now())
		require.NoError(t, err)
	}
	rt := projection.NewRuntime(store, db, zerolog.Nop())
	sub := projection.NewSubscription("notification")
	projection.RegisterNotification(sub, time.Now)
	rt.Register(sub)
	project := func() {
		require.NoError(t, rt.Drain(context.Background(), eventstore.NewSQLFeed(db, 500)))
	}

	deps := httpapi.Dependencies{
		DB:            db,
		Users:         nil,
		Recipes:       nil,
		Plans:         nil,
		Notifications: command.NewNotificationService(store, reader, zerolog.Nop()),
		Reader:        reader,
		Issuer:        issuer,
		Log:           zerolog.Nop(),
	}
	return httpapi.NewRouter(deps), issuer, store, project
}

func bearerToken(t *testing.T, issuer *auth.SessionIssuer, userID string) string {
	t.Helper()
	token, err := issuer.Issue(auth.Claims{UserID: userID, Email: userID + "@example.com"})
	require.NoError(t, err)
	return token
}

// TestNotificationRoutes_Unauthenticated covers the bare bearer-token
// requirement every protected route shares.
func TestNotificationRoutes_Unauthenticated(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/n1/complete", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestNotificationRoutes_OwnershipEnumerationResistance at the HTTP
// layer: completing a nonexistent notification
// and completing one owned by someone else must return identical
// responses.
func TestNotificationRoutes_OwnershipEnumerationResistance(t *testing.T) {
	router, issuer, store, project := newTestRouter(t)

	zero := 0
	require.NoError(t, store.Append(context.Background(), eventstore.AggregateNotification, "n1", &zero, []eventstore.PendingEvent{
		{
			EventName: events.ReminderScheduled,
			Payload: events.ReminderScheduledPayload{
				UserID: "someone-else", RecipeID: "r1", MealDate: "2030-01-07",
				ScheduledTime: time.Now().Add(time.Hour), ReminderType: events.ReminderDayOf,
				PrepHours: 1, MaxReminderCount: 3,
			},
		},
	}))
	project()

	token := bearerToken(t, issuer, "user-1")

	reqNotFound := httptest.NewRequest(http.MethodPost, "/api/notifications/does-not-exist/complete", nil)
	reqNotFound.Header.Set("Authorization", "Bearer "+token)
	recNotFound := httptest.NewRecorder()
	router.ServeHTTP(recNotFound, reqNotFound)

	reqNotOwned := httptest.NewRequest(http.MethodPost, "/api/notifications/n1/complete", nil)
	reqNotOwned.Header.Set("Authorization", "Bearer "+token)
	recNotOwned := httptest.NewRecorder()
	router.ServeHTTP(recNotOwned, reqNotOwned)

	assert.Equal(t, http.StatusNotFound, recNotFound.Code)
	assert.Equal(t, http.StatusNotFound, recNotOwned.Code)
	assert.Equal(t, recNotFound.Body.String(), recNotOwned.Body.String())
}

// TestNotificationRoutes_CompleteHappyPath covers the owned, pending case.
func TestNotificationRoutes_CompleteHappyPath(t *testing.T) {
	router, issuer, store, project := newTestRouter(t)

	zero := 0
	require.NoError(t, store.Append(context.Background(), eventstore.AggregateNotification, "n1", &zero, []eventstore.PendingEvent{
		{
			EventName: events.ReminderScheduled,
			Payload: events.ReminderScheduledPayload{
				UserID: "user-1", RecipeID: "r1", MealDate: "2030-01-07",
				ScheduledTime: time.Now().Add(time.Hour), ReminderType: events.ReminderDayOf,
				PrepHours: 1, MaxReminderCount: 3,
			},
		},
	}))
	project()

	token := bearerToken(t, issuer, "user-1")
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/n1/complete", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
