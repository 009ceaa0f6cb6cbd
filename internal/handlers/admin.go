package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"realestate-hub/internal/auth"
	"realestate-hub/internal/cleanup"
	"realestate-hub/internal/database"
	"realestate-hub/internal/forms"
	"realestate-hub/internal/middleware"
	"realestate-hub/internal/models"
	"realestate-hub/internal/ratelimit"
	"realestate-hub/internal/scheduler"
	"realestate-hub/internal/search"
	"realestate-hub/internal/snapshot"
	"realestate-hub/internal/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaintenanceRunner runs the nightly job on demand
type MaintenanceRunner interface {
	RunNow(ctx context.Context) (*scheduler.Report, error)
}

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db              *database.GormDB
	auth            *auth.Service
	stats           *stats.Service
	scheduler       MaintenanceRunner // nil when the scheduler is not running
	snapshotService *snapshot.Service
	cleanupService  *cleanup.Service
	limiter         *ratelimit.RateLimiter
	retentionDays   int
	logger          *zap.Logger
}

// AdminDeps groups what the admin dashboard reads and runs
type AdminDeps struct {
	DB            *database.GormDB
	Auth          *auth.Service
	Stats         *stats.Service
	Scheduler     MaintenanceRunner
	Snapshots     *snapshot.Service
	Cleanup       *cleanup.Service
	Limiter       *ratelimit.RateLimiter
	RetentionDays int
	Logger        *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(d AdminDeps) *AdminHandler {
	return &AdminHandler{
		db:              d.DB,
		auth:            d.Auth,
		stats:           d.Stats,
		scheduler:       d.Scheduler,
		snapshotService: d.Snapshots,
		cleanupService:  d.Cleanup,
		limiter:         d.Limiter,
		retentionDays:   d.RetentionDays,
		logger:          d.Logger,
	}
}

// GetStats returns the dashboard counters
func (h *AdminHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	dashboard, err := h.stats.Dashboard(ctx)
	if err != nil {
		writeError(c, h.logger, err, msgLoadData)
		return
	}

	response := gin.H{"stats": dashboard}

	deleteStats, err := h.cleanupService.GetDeleteStats(ctx, h.retentionDays)
	if err != nil {
		h.logger.Warn("Admin: failed to get delete stats", zap.Error(err))
	} else {
		response["deletions"] = deleteStats
	}

	c.JSON(http.StatusOK, response)
}

// ListUsers returns users, optionally filtered by ?role=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	role := models.UserRole(c.Query("role"))
	if role != "" && !role.Valid() {
		role = ""
	}
	users, err := h.db.ListUsers(c.Request.Context(), role)
	if err != nil {
		writeError(c, h.logger, err, msgLoadData)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// CreateUser adds a user with any role
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var user *models.User
	ok := submitForm(c, h.logger, msgSaveUser, func(ctx context.Context, f forms.UserForm) error {
		u, err := h.auth.NewUser(f.Email, f.Password, f.FullName, f.Phone, models.UserRole(f.Role))
		if err != nil {
			return err
		}
		u.AvatarURL = f.AvatarURL
		if f.Status != "" {
			u.Status = models.UserStatus(f.Status)
		}
		if err := h.db.CreateUser(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if !ok {
		return
	}

	h.logger.Info("Admin: user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, user)
}

// UpdateUser changes role, status or contact fields of a user
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	var user *models.User
	ok := submitForm(c, h.logger, msgSaveUser, func(ctx context.Context, f forms.UserUpdateForm) error {
		fields := f.Fields()
		if len(fields) == 0 {
			return &forms.ValidationError{Fields: forms.FieldErrors{"form": "No hay cambios para guardar"}}
		}
		u, err := h.db.UpdateUser(ctx, id, fields)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if !ok {
		return
	}

	h.logger.Info("Admin: user updated",
		zap.String("user_id", user.ID),
		zap.String("by", middleware.CurrentIdentity(c).UserID))
	c.JSON(http.StatusOK, user)
}

// ListProperties returns every live listing with its agent, using the same
// criteria as the public listing
func (h *AdminHandler) ListProperties(c *gin.Context) {
	page, err := h.db.ListProperties(c.Request.Context(), search.ParseCriteria(c.Request.URL.Query()))
	if err != nil {
		writeError(c, h.logger, err, msgLoadProperties)
		return
	}
	c.JSON(http.StatusOK, page)
}

// TriggerMaintenance runs the nightly job in the background
func (h *AdminHandler) TriggerMaintenance(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler not available"})
		return
	}

	h.logger.Info("Admin: manual maintenance run requested")

	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		report, err := h.scheduler.RunNow(ctx)
		if err != nil {
			h.logger.Error("Admin: manual maintenance failed", zap.Error(err))
			return
		}
		h.logger.Info("Admin: manual maintenance completed",
			zap.Int("changes", report.Changes),
			zap.Int("purged", report.Purged))
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Maintenance started"})
}

// RunCleanup executes physical deletion of listings deleted long ago
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    int  `json:"retention_days"`     // default: configured retention
		MaxDeletionCount int  `json:"max_deletion_count"` // safety limit
		DryRun           bool `json:"dry_run"`
	}

	// an empty body runs with the configured defaults
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
			return
		}
	}

	config := cleanup.DefaultCleanupConfig()
	if h.retentionDays > 0 {
		config.RetentionDays = h.retentionDays
	}
	if req.RetentionDays > 0 {
		config.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		config.MaxDeletionCount = req.MaxDeletionCount
	}
	config.DryRun = req.DryRun

	h.logger.Info("Admin: running cleanup",
		zap.Int("retention_days", config.RetentionDays),
		zap.Int("max_deletion_count", config.MaxDeletionCount),
		zap.Bool("dry_run", config.DryRun))

	result, err := h.cleanupService.PhysicallyDelete(c.Request.Context(), config)
	if err != nil {
		h.logger.Error("Admin: cleanup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDeleteLogs returns recent delete log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	logs, err := h.cleanupService.GetRecentDeleteLogs(c.Request.Context(), queryInt(c, "limit", 100))
	if err != nil {
		writeError(c, h.logger, err, msgLoadData)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetPropertyHistory returns snapshot history for a property
func (h *AdminHandler) GetPropertyHistory(c *gin.Context) {
	propertyID := c.Param("id")

	snapshots, err := h.snapshotService.GetPropertyHistory(c.Request.Context(), propertyID, queryInt(c, "limit", 30))
	if err != nil {
		writeError(c, h.logger, err, msgLoadData)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"property_id": propertyID,
		"snapshots":   snapshots,
		"count":       len(snapshots),
	})
}

// GetRecentChanges returns recent property changes
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	changes, err := h.snapshotService.GetRecentChanges(c.Request.Context(), queryInt(c, "limit", 100))
	if err != nil {
		writeError(c, h.logger, err, msgLoadData)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}

// GetCityStats returns active listing counts per city
func (h *AdminHandler) GetCityStats(c *gin.Context) {
	type CityStat struct {
		City  string `json:"city"`
		Count int64  `json:"count"`
	}

	var cityStats []CityStat
	err := h.db.DB().WithContext(c.Request.Context()).Model(&models.Property{}).
		Select("city, count(*) as count").
		Where("status IN ?", models.ActiveStatuses).
		Group("city").
		Order("count DESC").
		Limit(20).
		Scan(&cityStats).Error
	if err != nil {
		writeError(c, h.logger, err, msgLoadData)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"city_stats": cityStats,
		"count":      len(cityStats),
	})
}

// PriceRange is one bucket of the price distribution, in MXN
type PriceRange struct {
	RangeLabel string  `json:"range_label"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
	Count      int64   `json:"count"`
}

var (
	saleRanges = []PriceRange{
		{RangeLabel: "Hasta $2M", MinPrice: 0, MaxPrice: 2_000_000},
		{RangeLabel: "$2M a $5M", MinPrice: 2_000_000, MaxPrice: 5_000_000},
		{RangeLabel: "$5M a $10M", MinPrice: 5_000_000, MaxPrice: 10_000_000},
		{RangeLabel: "$10M a $20M", MinPrice: 10_000_000, MaxPrice: 20_000_000},
		{RangeLabel: "Más de $20M", MinPrice: 20_000_000, MaxPrice: 1e12},
	}
	rentRanges = []PriceRange{
		{RangeLabel: "Hasta $10k", MinPrice: 0, MaxPrice: 10_000},
		{RangeLabel: "$10k a $20k", MinPrice: 10_000, MaxPrice: 20_000},
		{RangeLabel: "$20k a $40k", MinPrice: 20_000, MaxPrice: 40_000},
		{RangeLabel: "Más de $40k", MinPrice: 40_000, MaxPrice: 1e12},
	}
)

// GetPriceDistribution returns MXN price buckets for sale and rent listings
func (h *AdminHandler) GetPriceDistribution(c *gin.Context) {
	db := h.db.DB().WithContext(c.Request.Context())
	count := func(status models.PropertyStatus, template []PriceRange) ([]PriceRange, error) {
		out := make([]PriceRange, len(template))
		copy(out, template)
		for i := range out {
			err := db.Model(&models.Property{}).
				Where("status = ? AND currency = ? AND price >= ? AND price < ?",
					status, "MXN", out[i].MinPrice, out[i].MaxPrice).
				Count(&out[i].Count).Error
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	sale, err := count(models.PropertyStatusForSale, saleRanges)
	if err != nil {
		writeError(c, h.logger, err, msgLoadData)
		return
	}
	rent, err := count(models.PropertyStatusForRent, rentRanges)
	if err != nil {
		writeError(c, h.logger, err, msgLoadData)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"for_sale": sale,
		"for_rent": rent,
	})
}

// GetRateLimitStats reports the form rate limiter state for the caller's IP
func (h *AdminHandler) GetRateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.limiter.GetStats(c.ClientIP()))
}
