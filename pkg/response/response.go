package response

import (
	"errors"
	"log/slog"
	"net/http"

	"anoa.com/coursemarket/pkg/apperror"
	"anoa.com/coursemarket/pkg/validator"
	"github.com/gin-gonic/gin"
)

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	explicit := errors.As(err, &appErr) && appErr.Code != 0

	if fields := validator.FieldErrors(err); fields != nil && !explicit {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": fields,
		})
		return
	}

	code := apperror.MapErrorToStatus(err)

	// Internal errors are logged and never echoed back.
	if code == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)

		if appErr != nil && appErr.Message != "" {
			c.AbortWithStatusJSON(code, gin.H{"error": appErr.Message})
			return
		}
		c.AbortWithStatusJSON(code, gin.H{"error": "internal server error"})
		return
	}

	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// BindError reports a request binding failure as 400, with field details when available.
func BindError(c *gin.Context, err error) {
	if fields := validator.FieldErrors(err); fields != nil {
		ResponseError(c, err)
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// Success writes a {"success": true} body, used by delete-style endpoints.
func Success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
