package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// Maintenance gates all traffic behind a flag file so operators can drain the
// node without a redeploy.
func Maintenance(flagPath string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, err := os.Stat(flagPath); err == nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service is under maintenance, try again later"})
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
