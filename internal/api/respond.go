package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thucdon/backend/internal/service"
)

// respondError maps service errors onto HTTP statuses: validation problems
// are the caller's fault, missing plans are 404, anything else is a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMealPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
