package handlers

import (
	"errors"
	"net/http"

	"task-tracker/backend/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// handleServiceError maps core error kinds to transport status codes. The
// mapping lives only here; services never see HTTP.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_reference", "message": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidField):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_field", "message": err.Error()})
	case errors.Is(err, apperrors.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_status", "message": err.Error()})
	case errors.Is(err, apperrors.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": "no_data", "message": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": err.Error()})
	case errors.Is(err, apperrors.ErrConfiguration):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "configuration_error", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to process request"})
	}
}
