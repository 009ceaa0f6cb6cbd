package handlers

import (
	"context"
	"errors"
	"net/http"

	"realestate-hub/internal/database"
	"realestate-hub/internal/forms"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LeadsHandler accepts the anonymous property forms: contact, visit and lead
type LeadsHandler struct {
	db     *database.GormDB
	logger *zap.Logger
}

func NewLeadsHandler(db *database.GormDB, logger *zap.Logger) *LeadsHandler {
	return &LeadsHandler{db: db, logger: logger}
}

// CreateInquiry stores a contact message for the :id property
func (h *LeadsHandler) CreateInquiry(c *gin.Context) {
	propertyID := c.Param("id")
	ok := submitForm(c, h.logger, msgSendInquiry, func(ctx context.Context, f forms.ContactForm) error {
		return h.propertyRef(h.db.CreateInquiry(ctx, f.ToModel(propertyID)))
	})
	if ok {
		c.JSON(http.StatusCreated, gin.H{"message": "Mensaje enviado"})
	}
}

// CreateVisit schedules a showing of the :id property
func (h *LeadsHandler) CreateVisit(c *gin.Context) {
	propertyID := c.Param("id")
	ok := submitForm(c, h.logger, msgScheduleVisit, func(ctx context.Context, f forms.VisitForm) error {
		return h.propertyRef(h.db.CreateVisit(ctx, f.ToModel(propertyID)))
	})
	if ok {
		c.JSON(http.StatusCreated, gin.H{"message": "Visita programada"})
	}
}

// CreateLead registers interest in the :id property
func (h *LeadsHandler) CreateLead(c *gin.Context) {
	propertyID := c.Param("id")
	ok := submitForm(c, h.logger, msgSendLead, func(ctx context.Context, f forms.LeadForm) error {
		return h.propertyRef(h.db.CreateLead(ctx, f.ToModel(propertyID)))
	})
	if ok {
		c.JSON(http.StatusCreated, gin.H{"message": "Datos enviados"})
	}
}

// propertyRef reports a missing property as not found rather than a bad reference
func (h *LeadsHandler) propertyRef(err error) error {
	if errors.Is(err, database.ErrInvalidReference) {
		return database.ErrNotFound
	}
	return err
}
