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

package eventstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/testdb"
)

type examplePayload struct {
	Name string `msgpack:"name"`
}

func TestSQLStore_CreateAndLoad(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	ctx := context.Background()

	id, err := store.Create(ctx, eventstore.AggregateRecipe, eventstore.PendingEvent{
		EventName: "RecipeCreated",
		Payload:   examplePayload{Name: "first"},
	})
	require.NoError(t, err)

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.CurrentVersion)
	require.Len(t, loaded.Events, 1)
	assert.Equal(t, 1, loaded.Events[0].Version)
	assert.Equal(t, "RecipeCreated", loaded.Events[0].EventName)

	var decoded examplePayload
	require.NoError(t, loaded.Events[0].Decode(&decoded))
	assert.Equal(t, "first", decoded.Name)
}

func TestSQLStore_AppendContiguousVersions(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	ctx := context.Background()

	id, err := store.Create(ctx, eventstore.AggregateRecipe, eventstore.PendingEvent{EventName: "A", Payload: examplePayload{Name: "1"}})
	require.NoError(t, err)

	err = store.Append(ctx, eventstore.AggregateRecipe, id, nil, []eventstore.PendingEvent{
		{EventName: "B", Payload: examplePayload{Name: "2"}},
		{EventName: "C", Payload: examplePayload{Name: "3"}},
	})
	require.NoError(t, err)

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.Len(t, loaded.Events, 3)
	for i, ev := range loaded.Events {
		assert.Equal(t, i+1, ev.Version, "versions must be contiguous starting at 1")
	}
	assert.Equal(t, 3, loaded.CurrentVersion)
}

func TestSQLStore_Append_ConcurrentUpdate(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	ctx := context.Background()

	id, err := store.Create(ctx, eventstore.AggregateRecipe, eventstore.PendingEvent{EventName: "A", Payload: examplePayload{Name: "1"}})
	require.NoError(t, err)

	stale := 0
	err = store.Append(ctx, eventstore.AggregateRecipe, id, &stale, []eventstore.PendingEvent{
		{EventName: "B", Payload: examplePayload{Name: "2"}},
	})
	assert.ErrorIs(t, err, eventstore.ErrConcurrentUpdate)
}

func TestSQLStore_Load_NotFound(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)

	_, err := store.Load(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, eventstore.ErrNotFound)
}

func TestSQLStore_Load_DecodeErrorIsFatal(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	ctx := context.Background()

	id, err := store.Create(ctx, eventstore.AggregateRecipe, eventstore.PendingEvent{EventName: "A", Payload: examplePayload{Name: "1"}})
	require.NoError(t, err)

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)

	var wrongShape struct {
		Name int `msgpack:"name"`
	}
	err = loaded.Events[0].Decode(&wrongShape)
	assert.Error(t, err)
}

func TestSQLStore_SnapshotRoundTrip(t *testing.T) {
	db := testdb.Open(t)
	store := eventstore.NewSQLStore(db, db)
	ctx := context.Background()

	id, err := store.Create(ctx, eventstore.AggregateRecipe, eventstore.PendingEvent{EventName: "A", Payload: examplePayload{Name: "1"}})
	require.NoError(t, err)

	_, _, found, err := store.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SaveSnapshot(ctx, id, 1, []byte("snapshot-state")))

	version, state, found, err := store.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, version)
	assert.Equal(t, []byte("snapshot-state"), state)
}
