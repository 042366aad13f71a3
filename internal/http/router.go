package http

import (
	"github.com/gin-gonic/gin"

	"github.com/vidstream-live-public/internal/config"
	"github.com/vidstream-live-public/internal/http/middleware"
	"github.com/vidstream-live-public/internal/realtime"
)

type RouterDeps struct {
	Handler *Handler
	AuthMW  *middleware.Auth
	Config  config.Config

	ChatHub         *realtime.ChatHub
	StreamHub       *realtime.StreamHub
	NotificationHub *realtime.NotificationHub
	VideoHub        *realtime.VideoHub
}

// NewRouter wires Gin with the REST surface and the four hub endpoints.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if deps.Config.MaintenanceFlag != "" {
		r.Use(middleware.Maintenance(deps.Config.MaintenanceFlag))
	}

	r.GET("/health", deps.Handler.Health)

	api := r.Group("/api")
	api.POST("/auth/login", deps.Handler.Login)
	api.GET("/auth/verify", deps.AuthMW.Middleware(), deps.Handler.VerifyToken)

	hubs := r.Group("/hubs")
	hubs.GET("/chat", deps.Handler.HubHandler(deps.ChatHub.Hub))
	hubs.GET("/stream", deps.Handler.HubHandler(deps.StreamHub.Hub))
	hubs.GET("/notifications", deps.Handler.HubHandler(deps.NotificationHub.Hub))
	hubs.GET("/video", deps.Handler.HubHandler(deps.VideoHub.Hub))

	return r
}
