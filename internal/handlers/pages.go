package handlers

import (
	"context"
	"net/http"
	"time"

	"realestate-hub/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// PageHandler answers the navigation routes. The browser UI renders them;
// the backend only decides who may see what.
type PageHandler struct {
	db     Pinger
	logger *zap.Logger
}

func NewPageHandler(db Pinger, logger *zap.Logger) *PageHandler {
	return &PageHandler{db: db, logger: logger}
}

func (h *PageHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, database := http.StatusOK, "ok"
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("[Health] database ping failed", zap.Error(err))
		status, database = http.StatusServiceUnavailable, "unavailable"
	}
	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"database": database,
		"time":     time.Now(),
	})
}

func (h *PageHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page": "home",
		"user": middleware.CurrentIdentity(c),
	})
}

// Login describes the login page, echoing where the user came from
func (h *PageHandler) Login(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":           "login",
		"redirectedFrom": c.Query("redirectedFrom"),
	})
}

func (h *PageHandler) Register(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "register"})
}

func (h *PageHandler) Favorites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page": "favoritos",
		"user": middleware.CurrentIdentity(c),
	})
}

// Admin is the legacy admin entry point; the dashboard replaced it
func (h *PageHandler) Admin(c *gin.Context) {
	c.Redirect(http.StatusFound, "/dashboard")
}
