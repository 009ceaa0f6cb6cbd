// Package stats computes dashboard counters with plain SQL over the
// application's connection pool.
package stats

import (
	"context"
	"database/sql"
	"fmt"

	"realestate-hub/internal/models"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// Service runs read-only aggregate queries
type Service struct {
	db *sqlx.DB
}

// NewService wraps an open connection pool. driverName is the sqlx driver
// name used to pick the placeholder style: postgres, mysql or sqlite3.
func NewService(db *sql.DB, driverName string) *Service {
	return &Service{db: sqlx.NewDb(db, driverName)}
}

// StatusCount is the number of rows with one status value
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int64  `db:"count" json:"count"`
}

// Dashboard is the admin overview
type Dashboard struct {
	TotalProperties  int64         `json:"total_properties"`
	ActiveListings   int64         `json:"active_listings"`
	PropertiesByType []TypeCount   `json:"properties_by_type"`
	ByStatus         []StatusCount `json:"properties_by_status"`
	TotalLeads       int64         `json:"total_leads"`
	NewLeads         int64         `json:"new_leads"`
	NewInquiries     int64         `json:"new_inquiries"`
	ScheduledVisits  int64         `json:"scheduled_visits"`
	TotalUsers       int64         `json:"total_users"`
	TotalAgents      int64         `json:"total_agents"`
	TotalFavorites   int64         `json:"total_favorites"`
}

// TypeCount is the number of live listings of one property type
type TypeCount struct {
	Type  string `db:"type" json:"type"`
	Count int64  `db:"count" json:"count"`
}

// Dashboard runs every counter concurrently
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	s.count(ctx, g, &d.TotalProperties, `SELECT COUNT(*) FROM properties WHERE deleted_at IS NULL`)
	s.countIn(ctx, g, &d.ActiveListings,
		`SELECT COUNT(*) FROM properties WHERE deleted_at IS NULL AND status IN (?)`, activeStatuses())
	s.count(ctx, g, &d.TotalLeads, `SELECT COUNT(*) FROM leads`)
	s.count(ctx, g, &d.NewLeads, s.db.Rebind(`SELECT COUNT(*) FROM leads WHERE status = ?`), models.LeadStatusNew)
	s.count(ctx, g, &d.NewInquiries, s.db.Rebind(`SELECT COUNT(*) FROM inquiries WHERE status = ?`), models.InquiryStatusNew)
	s.count(ctx, g, &d.ScheduledVisits, s.db.Rebind(`SELECT COUNT(*) FROM visits WHERE status = ?`), models.VisitStatusScheduled)
	s.count(ctx, g, &d.TotalUsers, `SELECT COUNT(*) FROM users`)
	s.count(ctx, g, &d.TotalAgents, `SELECT COUNT(*) FROM agents`)
	s.count(ctx, g, &d.TotalFavorites, `SELECT COUNT(*) FROM favorites`)

	g.Go(func() error {
		d.ByStatus = []StatusCount{}
		return s.db.SelectContext(ctx, &d.ByStatus, `
			SELECT status, COUNT(*) AS count FROM properties
			WHERE deleted_at IS NULL
			GROUP BY status ORDER BY status`)
	})
	g.Go(func() error {
		d.PropertiesByType = []TypeCount{}
		return s.db.SelectContext(ctx, &d.PropertiesByType, `
			SELECT type, COUNT(*) AS count FROM properties
			WHERE deleted_at IS NULL
			GROUP BY type ORDER BY type`)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute dashboard: %w", err)
	}
	return d, nil
}

// AgentSummary holds the counters shown on an agent's dashboard
type AgentSummary struct {
	Properties     int64 `json:"properties"`
	ActiveListings int64 `json:"active_listings"`
	NewLeads       int64 `json:"new_leads"`
	OpenInquiries  int64 `json:"open_inquiries"`
	UpcomingVisits int64 `json:"upcoming_visits"`
	Favorites      int64 `json:"favorites"`
}

// AgentSummary counts the agent's own records
func (s *Service) AgentSummary(ctx context.Context, agentID string) (*AgentSummary, error) {
	a := &AgentSummary{}
	g, ctx := errgroup.WithContext(ctx)

	s.count(ctx, g, &a.Properties,
		s.db.Rebind(`SELECT COUNT(*) FROM properties WHERE deleted_at IS NULL AND agent_id = ?`), agentID)
	s.countIn(ctx, g, &a.ActiveListings,
		`SELECT COUNT(*) FROM properties WHERE deleted_at IS NULL AND agent_id = ? AND status IN (?)`,
		agentID, activeStatuses())
	s.count(ctx, g, &a.NewLeads,
		s.db.Rebind(`SELECT COUNT(*) FROM leads WHERE agent_id = ? AND status = ?`), agentID, models.LeadStatusNew)
	s.countIn(ctx, g, &a.OpenInquiries,
		`SELECT COUNT(*) FROM inquiries WHERE agent_id = ? AND status IN (?)`,
		agentID, []string{string(models.InquiryStatusNew), string(models.InquiryStatusContacted)})
	s.count(ctx, g, &a.UpcomingVisits,
		s.db.Rebind(`SELECT COUNT(*) FROM visits WHERE agent_id = ? AND status = ?`), agentID, models.VisitStatusScheduled)
	s.count(ctx, g, &a.Favorites, s.db.Rebind(`
		SELECT COUNT(*) FROM favorites f
		JOIN properties p ON p.id = f.property_id
		WHERE p.deleted_at IS NULL AND p.agent_id = ?`), agentID)

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute agent summary: %w", err)
	}
	return a, nil
}

func (s *Service) count(ctx context.Context, g *errgroup.Group, dest *int64, query string, args ...interface{}) {
	g.Go(func() error {
		return s.db.GetContext(ctx, dest, query, args...)
	})
}

// countIn expands slice arguments with sqlx.In before running the count
func (s *Service) countIn(ctx context.Context, g *errgroup.Group, dest *int64, query string, args ...interface{}) {
	g.Go(func() error {
		q, expanded, err := sqlx.In(query, args...)
		if err != nil {
			return err
		}
		return s.db.GetContext(ctx, dest, s.db.Rebind(q), expanded...)
	})
}

func activeStatuses() []string {
	out := make([]string, len(models.ActiveStatuses))
	for i, st := range models.ActiveStatuses {
		out[i] = string(st)
	}
	return out
}
