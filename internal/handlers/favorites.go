package handlers

import (
	"errors"
	"net/http"

	"realestate-hub/internal/database"
	"realestate-hub/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FavoriteHandler manages the signed-in user's saved listings
type FavoriteHandler struct {
	db     *database.GormDB
	logger *zap.Logger
}

func NewFavoriteHandler(db *database.GormDB, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{db: db, logger: logger}
}

// List returns the user's favorites, newest first, each with its property
func (h *FavoriteHandler) List(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	favorites, err := h.db.ListFavorites(c.Request.Context(), identity.UserID)
	if err != nil {
		writeError(c, h.logger, err, msgLoadFavorites)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// Status reports whether :propertyId is a favorite of the user
func (h *FavoriteHandler) Status(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	propertyID := c.Param("propertyId")
	favorite, err := h.db.IsFavorite(c.Request.Context(), identity.UserID, propertyID)
	if err != nil {
		writeError(c, h.logger, err, msgCheckFavorite)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_id": propertyID, "favorite": favorite})
}

// Add saves :propertyId; adding twice is not an error
func (h *FavoriteHandler) Add(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	propertyID := c.Param("propertyId")
	if err := h.db.AddFavorite(c.Request.Context(), identity.UserID, propertyID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_id": propertyID, "favorite": true})
}

// Remove unsaves :propertyId
func (h *FavoriteHandler) Remove(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	propertyID := c.Param("propertyId")
	if err := h.db.RemoveFavorite(c.Request.Context(), identity.UserID, propertyID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_id": propertyID, "favorite": false})
}

// Toggle flips :propertyId and returns the new state
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	propertyID := c.Param("propertyId")
	favorite, err := h.db.ToggleFavorite(c.Request.Context(), identity.UserID, propertyID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_id": propertyID, "favorite": favorite})
}

func (h *FavoriteHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, database.ErrInvalidReference) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgPropertyNotFound})
		return
	}
	writeError(c, h.logger, err, msgToggleFavorite)
}
