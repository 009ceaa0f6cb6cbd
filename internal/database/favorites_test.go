package database_test

import (
	"context"
	"testing"

	"realestate-hub/internal/database"
	"realestate-hub/internal/database/dbtest"
	"realestate-hub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFavorite_TwiceRestoresCount(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	agent := dbtest.Agent(t, db, "agente@example.com")
	client := dbtest.Client(t, db, "cliente@example.com")
	p := dbtest.Property(t, db, agent.ID, models.Property{})

	before, err := db.CountFavorites(ctx, client.ID)
	require.NoError(t, err)

	on, err := db.ToggleFavorite(ctx, client.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, on)

	off, err := db.ToggleFavorite(ctx, client.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, off)

	after, err := db.CountFavorites(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddFavorite_Idempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	agent := dbtest.Agent(t, db, "agente@example.com")
	client := dbtest.Client(t, db, "cliente@example.com")
	p := dbtest.Property(t, db, agent.ID, models.Property{})

	require.NoError(t, db.AddFavorite(ctx, client.ID, p.ID))
	require.NoError(t, db.AddFavorite(ctx, client.ID, p.ID))

	count, err := db.CountFavorites(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	ok, err := db.IsFavorite(ctx, client.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, db.RemoveFavorite(ctx, client.ID, p.ID))
	ok, err = db.IsFavorite(ctx, client.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddFavorite_UnknownProperty(t *testing.T) {
	db := dbtest.New(t)
	client := dbtest.Client(t, db, "cliente@example.com")

	err := db.AddFavorite(context.Background(), client.ID, "missing")
	assert.ErrorIs(t, err, database.ErrInvalidReference)
}

func TestListFavorites_SkipsDeletedProperties(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	agent := dbtest.Agent(t, db, "agente@example.com")
	client := dbtest.Client(t, db, "cliente@example.com")
	kept := dbtest.Property(t, db, agent.ID, models.Property{Title: "Sigue"})
	gone := dbtest.Property(t, db, agent.ID, models.Property{Title: "Borrada"})

	require.NoError(t, db.AddFavorite(ctx, client.ID, kept.ID))
	require.NoError(t, db.AddFavorite(ctx, client.ID, gone.ID))
	require.NoError(t, db.DeleteProperty(ctx, gone.ID))

	favs, err := db.ListFavorites(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.NotNil(t, favs[0].Property)
	assert.Equal(t, "Sigue", favs[0].Property.Title)
}
