package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"realestate-hub/internal/auth"
	"realestate-hub/internal/database"
	"realestate-hub/internal/forms"
	"realestate-hub/internal/middleware"
	"realestate-hub/internal/models"
	"realestate-hub/internal/search"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Searcher is the search index used for typo-tolerant lookups
type Searcher interface {
	FilterSearch(c search.Criteria) (*search.SearchResult, error)
	IndexProperty(p *models.Property) error
	DeleteProperty(id string) error
}

// Snapshotter records listing history after writes
type Snapshotter interface {
	RecordProperty(ctx context.Context, p *models.Property) ([]models.PropertyChange, error)
	RecordRemoval(ctx context.Context, p *models.Property) error
}

// PropertyHandler serves listing reads and agent/admin listing writes
type PropertyHandler struct {
	db        *database.GormDB
	search    Searcher // nil when search is disabled
	snapshots Snapshotter
	logger    *zap.Logger
}

func NewPropertyHandler(db *database.GormDB, searcher Searcher, snapshots Snapshotter, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{db: db, search: searcher, snapshots: snapshots, logger: logger}
}

// List returns the listings matching the query-string criteria
func (h *PropertyHandler) List(c *gin.Context) {
	criteria := search.ParseCriteria(c.Request.URL.Query())

	start := time.Now()
	page, err := h.db.ListProperties(c.Request.Context(), criteria)
	if err != nil {
		writeError(c, h.logger, err, msgLoadProperties)
		return
	}

	h.logger.Debug("[Search API] listing",
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int64("total", page.Total),
		zap.Int("limit", page.Limit),
		zap.String("sort", criteria.Sort))

	c.JSON(http.StatusOK, page)
}

// Get returns one listing with its agent
func (h *PropertyHandler) Get(c *gin.Context) {
	property, err := h.db.GetProperty(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgPropertyNotFound})
		return
	}
	if err != nil {
		writeError(c, h.logger, err, msgLoadProperty)
		return
	}
	c.JSON(http.StatusOK, property)
}

// Search runs the criteria against the search index. Without an index it
// answers from the database with the same response shape.
func (h *PropertyHandler) Search(c *gin.Context) {
	criteria := search.ParseCriteria(c.Request.URL.Query())

	if h.search == nil {
		page, err := h.db.ListProperties(c.Request.Context(), criteria)
		if err != nil {
			writeError(c, h.logger, err, msgSearch)
			return
		}
		c.JSON(http.StatusOK, search.SearchResult{Hits: page.Properties, TotalHits: page.Total})
		return
	}

	result, err := h.search.FilterSearch(criteria)
	if err != nil {
		writeError(c, h.logger, err, msgSearch)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create lists a new property. Agents list for themselves; admins may name an agent.
func (h *PropertyHandler) Create(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	var created *models.Property
	ok := submitForm(c, h.logger, msgCreateProperty, func(ctx context.Context, f forms.PropertyForm) error {
		agentID := identity.UserID
		if identity.IsAdmin() && f.AgentID != "" {
			agentID = f.AgentID
		}
		p := f.ToModel(agentID)
		if err := h.db.CreateProperty(ctx, p); err != nil {
			return err
		}
		created = p
		return nil
	})
	if !ok {
		return
	}

	h.afterWrite(c.Request.Context(), created)
	c.JSON(http.StatusCreated, created)
}

// Update replaces the editable fields of a listing. The body carries the
// version the editor loaded; a stale version answers 409.
func (h *PropertyHandler) Update(c *gin.Context) {
	existing, ok := h.loadManaged(c)
	if !ok {
		return
	}
	identity := middleware.CurrentIdentity(c)

	var updated *models.Property
	ok = submitForm(c, h.logger, msgSaveProperty, func(ctx context.Context, f forms.PropertyEditForm) error {
		fields := f.Fields()
		if identity.IsAdmin() && f.AgentID != "" {
			fields["agent_id"] = f.AgentID
		}
		p, err := h.db.UpdateProperty(ctx, existing.ID, f.Version, fields)
		if err != nil {
			return err
		}
		updated = p
		return nil
	})
	if !ok {
		return
	}

	h.afterWrite(c.Request.Context(), updated)
	c.JSON(http.StatusOK, updated)
}

// UpdateStatus changes only the market status of a listing
func (h *PropertyHandler) UpdateStatus(c *gin.Context) {
	existing, ok := h.loadManaged(c)
	if !ok {
		return
	}

	var updated *models.Property
	ok = submitForm(c, h.logger, msgUpdateStatus, func(ctx context.Context, f forms.PropertyStatusForm) error {
		p, err := h.db.SetPropertyStatus(ctx, existing.ID, models.PropertyStatus(f.Status))
		if err != nil {
			return err
		}
		updated = p
		return nil
	})
	if !ok {
		return
	}

	h.afterWrite(c.Request.Context(), updated)
	c.JSON(http.StatusOK, updated)
}

// Delete soft-deletes a listing
func (h *PropertyHandler) Delete(c *gin.Context) {
	existing, ok := h.loadManaged(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.db.DeleteProperty(ctx, existing.ID); err != nil {
		writeError(c, h.logger, err, msgDeleteProperty)
		return
	}

	if err := h.snapshots.RecordRemoval(ctx, existing); err != nil {
		h.logger.Warn("[Snapshot] failed to record removal", zap.String("property_id", existing.ID), zap.Error(err))
	}
	if h.search != nil {
		if err := h.search.DeleteProperty(existing.ID); err != nil {
			h.logger.Warn("[Search] failed to remove property from index", zap.String("property_id", existing.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"deleted": existing.ID})
}

// loadManaged fetches the :id listing and checks the caller may change it
func (h *PropertyHandler) loadManaged(c *gin.Context) (*models.Property, bool) {
	property, err := h.db.GetProperty(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgPropertyNotFound})
		return nil, false
	}
	if err != nil {
		writeError(c, h.logger, err, msgLoadProperty)
		return nil, false
	}
	if !middleware.CurrentIdentity(c).CanManageProperty(property.AgentID) {
		c.JSON(http.StatusForbidden, gin.H{"error": msgForbidden})
		return nil, false
	}
	return property, true
}

// afterWrite refreshes history and the search index. Failures only log;
// the nightly job reconciles both.
func (h *PropertyHandler) afterWrite(ctx context.Context, p *models.Property) {
	if _, err := h.snapshots.RecordProperty(ctx, p); err != nil {
		h.logger.Warn("[Snapshot] failed to record property", zap.String("property_id", p.ID), zap.Error(err))
	}
	if h.search != nil {
		if err := h.search.IndexProperty(p); err != nil {
			h.logger.Warn("[Search] failed to index property", zap.String("property_id", p.ID), zap.Error(err))
		}
	}
}

// canListProperties admits agents and admins to the listing write routes
func canListProperties(identity *auth.Identity) bool {
	return identity.IsAgent() || identity.IsAdmin()
}
