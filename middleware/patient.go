package middleware

import (
	"net/http"

	"medibook/handlers"

	"github.com/gin-gonic/gin"
)

// PatientIdentity requires the edge-supplied patient id header on every
// checkout endpoint. Session mechanics live at the edge; this service only
// consumes the result.
func PatientIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		patientID := c.GetHeader("X-Patient-ID")
		if patientID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing patient identity"})
			return
		}
		c.Set(handlers.PatientIDKey, patientID)
		c.Next()
	}
}
