package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vidstream-live-public/internal/http/middleware"
	"github.com/vidstream-live-public/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the SPA is served from multiple origins; restrict via deployment config
	},
}

// HubHandler upgrades the request and binds the connection to a hub.
// Authentication is best-effort here: auth-required hub methods reject
// unauthenticated callers with an Error event instead of refusing the
// connection.
func (h *Handler) HubHandler(hub *realtime.Hub) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var userID int64
		if token := middleware.TokenFromRequest(ctx); token != "" {
			claims, err := h.auth.Verify(token)
			if err != nil {
				h.log.Warnf("hub %s: rejected token: %v", hub.Name(), err)
			} else {
				userID = claims.UserID()
			}
		}

		conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			h.log.Errorf("hub %s: upgrade: %v", hub.Name(), err)
			return
		}

		client := realtime.NewClient(hub, conn, userID, h.log)
		go client.Run()
	}
}
