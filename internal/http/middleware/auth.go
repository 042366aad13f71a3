package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vidstream-live-public/internal/auth"
)

type Auth struct {
	service *auth.Service
}

func NewAuth(service *auth.Service) *Auth {
	return &Auth{service: service}
}

// Middleware requires a valid Bearer token and stores the logical user id
// under "userId" for downstream handlers.
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := TokenFromRequest(ctx)
		if token == "" {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			ctx.Abort()
			return
		}

		claims, err := a.service.Verify(token)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			ctx.Abort()
			return
		}

		userID := claims.UserID()
		if userID == 0 {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			ctx.Abort()
			return
		}

		ctx.Set("userId", userID)
		ctx.Next()
	}
}

// TokenFromRequest pulls the JWT from the Authorization header or, for
// WebSocket upgrades where custom headers are unavailable to browsers, the
// access_token query parameter.
func TokenFromRequest(ctx *gin.Context) string {
	if header := ctx.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 {
			return parts[1]
		}
	}
	return ctx.Query("access_token")
}
