package snapshot_test

import (
	"context"
	"testing"
	"time"

	"realestate-hub/internal/database/dbtest"
	"realestate-hub/internal/models"
	"realestate-hub/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordProperty_DetectsDailyChanges(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	agent := dbtest.Agent(t, db, "agente@example.com")
	p := dbtest.Property(t, db, agent.ID, models.Property{Title: "Casa", Price: 8500000})

	now := time.Date(2030, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := snapshot.NewService(db.DB(), zap.NewNop()).WithClock(func() time.Time { return now })

	changes, err := svc.RecordProperty(ctx, p)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.ChangeTypeNew, changes[0].ChangeType)

	now = now.Add(24 * time.Hour)
	p.Price = 8000000
	p.Status = models.PropertyStatusSold
	changes, err = svc.RecordProperty(ctx, p)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, models.ChangeTypePrice, changes[0].ChangeType)
	require.NotNil(t, changes[0].ChangeMagnitude)
	assert.Equal(t, -500000.0, *changes[0].ChangeMagnitude)
	assert.Equal(t, models.ChangeTypeStatus, changes[1].ChangeType)
	assert.Equal(t, "sold", changes[1].NewValue)

	history, err := svc.GetPropertyHistory(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 8000000.0, history[0].Price)
	assert.True(t, history[0].HasChanged)
}

func TestRecordProperty_SameDayReplaces(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	agent := dbtest.Agent(t, db, "agente@example.com")
	p := dbtest.Property(t, db, agent.ID, models.Property{Price: 100})

	now := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := snapshot.NewService(db.DB(), zap.NewNop()).WithClock(func() time.Time { return now })

	_, err := svc.RecordProperty(ctx, p)
	require.NoError(t, err)
	now = now.Add(3 * time.Hour)
	p.Price = 120
	_, err = svc.RecordProperty(ctx, p)
	require.NoError(t, err)

	history, err := svc.GetPropertyHistory(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 120.0, history[0].Price)

	recent, err := svc.GetRecentChanges(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestRecordRemoval(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	agent := dbtest.Agent(t, db, "agente@example.com")
	p := dbtest.Property(t, db, agent.ID, models.Property{})
	svc := snapshot.NewService(db.DB(), zap.NewNop())

	require.NoError(t, svc.RecordRemoval(ctx, p))

	recent, err := svc.GetRecentChanges(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, models.ChangeTypeRemoved, recent[0].ChangeType)
}
