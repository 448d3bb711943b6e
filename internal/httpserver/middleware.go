// Package httpserver exposes the rolling simulator over HTTP for operators
// who want to trigger a run without the CLI, per SPEC_FULL §2.2's domain
// stack note on wiring gin-gonic/gin and rs/cors. Adapted from the donor's
// internal/api/middleware/error.go recovery handler; the rest of the old
// api/handlers and api/models packages modeled a Grid-Status-specific REST
// surface (battery catalogs, strategy listings, dataset/location browsing)
// that has no equivalent in this domain and was dropped rather than ported.
package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// recoveryHandler turns a panic inside a request handler into a JSON 500
// instead of crashing the process.
func recoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		msg := "an unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": "INTERNAL_ERROR", "message": msg},
		})
		c.Abort()
	})
}
