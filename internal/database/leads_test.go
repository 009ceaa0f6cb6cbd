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

func TestCreateInquiry_TakesAgentFromProperty(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	agent := dbtest.Agent(t, db, "agente@example.com")
	p := dbtest.Property(t, db, agent.ID, models.Property{})

	inquiry := &models.Inquiry{PropertyID: p.ID, Name: "Ana", Email: "ana@example.com", Message: "Hola"}
	require.NoError(t, db.CreateInquiry(ctx, inquiry))
	assert.Equal(t, agent.ID, inquiry.AgentID)
	assert.Equal(t, models.InquiryStatusNew, inquiry.Status)

	list, err := db.ListInquiriesByAgent(ctx, agent.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Property)
	assert.Equal(t, p.ID, list[0].Property.ID)
}

func TestCreateLead_UnknownProperty(t *testing.T) {
	db := dbtest.New(t)
	err := db.CreateLead(context.Background(), &models.Lead{PropertyID: "missing", Name: "A", Email: "a@example.com"})
	assert.ErrorIs(t, err, database.ErrInvalidReference)
}

func TestUpdateLeadStatus_ScopedToAgent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	owner := dbtest.Agent(t, db, "owner@example.com")
	other := dbtest.Agent(t, db, "other@example.com")
	p := dbtest.Property(t, db, owner.ID, models.Property{})

	lead := &models.Lead{PropertyID: p.ID, Name: "Luis", Email: "luis@example.com"}
	require.NoError(t, db.CreateLead(ctx, lead))
	assert.Equal(t, models.LeadSourceWebsite, lead.Source)

	_, err := db.UpdateLeadStatus(ctx, lead.ID, other.ID, models.LeadStatusContacted, nil)
	assert.ErrorIs(t, err, database.ErrNotFound)

	notes := "Llamar el lunes"
	updated, err := db.UpdateLeadStatus(ctx, lead.ID, owner.ID, models.LeadStatusContacted, &notes)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, updated.Status)
	assert.Equal(t, notes, updated.Notes)
}

func TestListVisitsByAgent_OrderedByDate(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	agent := dbtest.Agent(t, db, "agente@example.com")
	p := dbtest.Property(t, db, agent.ID, models.Property{})

	for _, date := range []string{"2030-05-03", "2030-05-01", "2030-05-02"} {
		require.NoError(t, db.CreateVisit(ctx, &models.Visit{
			PropertyID: p.ID, Name: "V", Email: "v@example.com", Phone: "555",
			VisitDate: date, VisitTime: "10:00",
		}))
	}

	visits, err := db.ListVisitsByAgent(ctx, agent.ID)
	require.NoError(t, err)
	require.Len(t, visits, 3)
	assert.Equal(t, "2030-05-01", visits[0].VisitDate)
	assert.Equal(t, "2030-05-03", visits[2].VisitDate)
	assert.Equal(t, models.VisitStatusScheduled, visits[0].Status)
}
