package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// All responses share the {status, data|errors|message, meta?} envelope.

func respondData(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"status": "success", "data": data})
}

func respondPage(c *gin.Context, data any, meta gin.H) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data, "meta": meta})
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "error", "message": message})
}

func abortError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"status": "error", "message": message})
}

// respondValidation renders field-level validation errors as a
// field -> messages map, 422.
func respondValidation(c *gin.Context, errs map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "errors": errs})
}
