// Package handlers exposes the HTTP API and the gated pages.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"realestate-hub/internal/auth"
	"realestate-hub/internal/database"
	"realestate-hub/internal/forms"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps a backend error to a status and a user-facing message.
// Anything unrecognized is logged and answered with fallback.
func writeError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	if ve, ok := forms.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidFields, "fields": ve.Fields})
		return
	}

	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	case errors.Is(err, database.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": msgVersionConflict})
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": msgDuplicate})
	case errors.Is(err, database.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidReference})
	case errors.Is(err, forms.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": msgSubmitInFlight})
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": msgEmailTaken})
	case errors.Is(err, auth.ErrRoleNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": msgRoleNotAllowed})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgBadCredentials})
	case errors.Is(err, auth.ErrInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": msgInactiveAccount})
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to send
		c.Status(499)
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// submitForm binds the JSON body into a new form instance and submits it with
// send. It reports whether the submission succeeded; on failure the response
// has already been written.
func submitForm[T any](c *gin.Context, logger *zap.Logger, fallback string, send func(ctx context.Context, values T) error) bool {
	var values T
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return false
	}

	ctx := c.Request.Context()
	form := forms.NewInstance(values)
	stop := context.AfterFunc(ctx, form.Detach)
	defer stop()

	if err := form.Submit(ctx, send); err != nil {
		if errors.Is(err, forms.ErrDetached) {
			err = ctx.Err()
		}
		writeError(c, logger, err, fallback)
		return false
	}
	return true
}

// queryInt reads a positive integer query parameter, falling back to def
func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
