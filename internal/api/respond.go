package api

import (
	"net/http"

	"crm-gateway/internal/crm"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy onto HTTP statuses: validation
// and type mismatch 400, not found 404, everything else (storage,
// transport) 500.
func respondError(c *gin.Context, err error) {
	switch {
	case crm.IsValidationError(err), crm.IsTypeMismatchError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case crm.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
