package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"realestate-hub/internal/database"
	"realestate-hub/internal/media"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxImageSize = 10 << 20

// MediaStore keeps uploaded images
type MediaStore interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, id string) (*media.File, error)
}

// MediaHandler uploads and serves property images
type MediaHandler struct {
	store      MediaStore // nil when object storage is not configured
	properties *PropertyHandler
	db         *database.GormDB
	logger     *zap.Logger
}

func NewMediaHandler(store MediaStore, properties *PropertyHandler, db *database.GormDB, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{store: store, properties: properties, db: db, logger: logger}
}

// Upload stores the multipart "file" image and appends its URL to the :id property
func (h *MediaHandler) Upload(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgMediaDisabled})
		return
	}
	existing, ok := h.properties.loadManaged(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgImageOnly})
		return
	}
	if header.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgUploadImage})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	id, err := h.store.Upload(ctx, header.Filename, contentType, file)
	if err != nil {
		writeError(c, h.logger, err, msgUploadImage)
		return
	}

	url := "/media/" + id
	updated, err := h.db.AppendPropertyImage(ctx, existing.ID, url)
	if err != nil {
		writeError(c, h.logger, err, msgUploadImage)
		return
	}
	h.logger.Info("[Media] image uploaded",
		zap.String("property_id", existing.ID),
		zap.String("file_id", id),
		zap.Int64("size", header.Size))

	h.properties.afterWrite(ctx, updated)
	c.JSON(http.StatusCreated, gin.H{"url": url, "property": updated})
}

// Download streams a stored image
func (h *MediaHandler) Download(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgMediaDisabled})
		return
	}

	file, err := h.store.Open(c.Request.Context(), c.Param("fileID"))
	if errors.Is(err, media.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return
	}
	if err != nil {
		writeError(c, h.logger, err, msgNotFound)
		return
	}
	defer file.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, file, nil)
}
