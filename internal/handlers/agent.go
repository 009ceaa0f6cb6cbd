package handlers

import (
	"context"
	"net/http"

	"realestate-hub/internal/database"
	"realestate-hub/internal/forms"
	"realestate-hub/internal/middleware"
	"realestate-hub/internal/models"
	"realestate-hub/internal/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AgentHandler serves the agent dashboard under /agente.
// Leads, inquiries and visits are owned by the listing agent's user id.
type AgentHandler struct {
	db     *database.GormDB
	stats  *stats.Service
	logger *zap.Logger
}

func NewAgentHandler(db *database.GormDB, st *stats.Service, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{db: db, stats: st, logger: logger}
}

// Dashboard returns the agent's profile, listings, leads, inquiries and visits
func (h *AgentHandler) Dashboard(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	userID := identity.UserID

	var (
		agent      *models.Agent
		properties []models.Property
		leads      []models.Lead
		inquiries  []models.Inquiry
		visits     []models.Visit
		summary    *stats.AgentSummary
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		agent, err = h.db.GetAgentByUserID(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		properties, err = h.db.ListPropertiesByAgent(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		leads, err = h.db.ListLeadsByAgent(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		inquiries, err = h.db.ListInquiriesByAgent(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		visits, err = h.db.ListVisitsByAgent(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		summary, err = h.stats.AgentSummary(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(c, h.logger, err, msgLoadData)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agent":      agent,
		"summary":    summary,
		"properties": properties,
		"leads":      leads,
		"inquiries":  inquiries,
		"visits":     visits,
	})
}

func (h *AgentHandler) UpdateLeadStatus(c *gin.Context) {
	userID := middleware.CurrentIdentity(c).UserID
	var lead *models.Lead
	ok := submitForm(c, h.logger, msgUpdateStatus, func(ctx context.Context, f forms.LeadStatusForm) (err error) {
		lead, err = h.db.UpdateLeadStatus(ctx, c.Param("id"), userID, models.LeadStatus(f.Status), f.Notes)
		return err
	})
	if ok {
		c.JSON(http.StatusOK, lead)
	}
}

func (h *AgentHandler) UpdateInquiryStatus(c *gin.Context) {
	userID := middleware.CurrentIdentity(c).UserID
	var inquiry *models.Inquiry
	ok := submitForm(c, h.logger, msgUpdateStatus, func(ctx context.Context, f forms.InquiryStatusForm) (err error) {
		inquiry, err = h.db.UpdateInquiryStatus(ctx, c.Param("id"), userID, models.InquiryStatus(f.Status), f.Notes)
		return err
	})
	if ok {
		c.JSON(http.StatusOK, inquiry)
	}
}

func (h *AgentHandler) UpdateVisitStatus(c *gin.Context) {
	userID := middleware.CurrentIdentity(c).UserID
	var visit *models.Visit
	ok := submitForm(c, h.logger, msgUpdateStatus, func(ctx context.Context, f forms.VisitStatusForm) (err error) {
		visit, err = h.db.UpdateVisitStatus(ctx, c.Param("id"), userID, models.VisitStatus(f.Status), f.Notes)
		return err
	})
	if ok {
		c.JSON(http.StatusOK, visit)
	}
}

// Profile returns the agent's public profile
func (h *AgentHandler) Profile(c *gin.Context) {
	agent, err := h.db.GetAgentByUserID(c.Request.Context(), middleware.CurrentIdentity(c).UserID)
	if err != nil {
		writeError(c, h.logger, err, msgLoadProfile)
		return
	}
	c.JSON(http.StatusOK, agent)
}

// UpdateProfile edits the agent's public profile
func (h *AgentHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.CurrentIdentity(c).UserID
	var agent *models.Agent
	ok := submitForm(c, h.logger, msgUpdateProfile, func(ctx context.Context, f forms.AgentProfileForm) (err error) {
		agent, err = h.db.UpdateAgentProfile(ctx, userID, f.Fields())
		return err
	})
	if ok {
		c.JSON(http.StatusOK, gin.H{"message": msgProfileUpdated, "agent": agent})
	}
}
