package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/vidstream-live-public/internal/auth"
	"github.com/vidstream-live-public/internal/bus"
	"github.com/vidstream-live-public/internal/chat"
	"github.com/vidstream-live-public/internal/config"
	"github.com/vidstream-live-public/internal/db"
	vhttp "github.com/vidstream-live-public/internal/http"
	"github.com/vidstream-live-public/internal/http/middleware"
	"github.com/vidstream-live-public/internal/presence"
	"github.com/vidstream-live-public/internal/realtime"
	"github.com/vidstream-live-public/pkg/logger"
)

func main() {
	cfg := config.Load()
	logg := logger.NewLogger(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logg.Fatalf("db connect: %v", err)
	}
	defer pool.Close()
	if err := db.ApplyMigrations(ctx, pool, filepath.Join("internal", "db", "migrations")); err != nil {
		logg.Fatalf("apply migrations: %v", err)
	}

	authSvc := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)
	chatStore := chat.NewStore(pool)

	var tracker realtime.ViewerTracker
	if cfg.RedisURL != "" {
		redisTracker, err := presence.NewTracker(cfg.RedisURL)
		if err != nil {
			logg.Fatalf("redis connect: %v", err)
		}
		defer redisTracker.Close()
		tracker = redisTracker
	} else {
		logg.Warnf("REDIS_URL not set; viewer counters disabled")
	}

	chatHub := realtime.NewChatHub(realtime.NewRegistry(), chatStore, logg)
	streamHub := realtime.NewStreamHub(realtime.NewRegistry(), tracker, logg)
	notificationHub := realtime.NewNotificationHub(realtime.NewRegistry(), logg)
	videoHub := realtime.NewVideoHub(realtime.NewRegistry(), logg)

	if cfg.NATSURL != "" {
		bridge, err := bus.NewBridge(cfg.NATSURL, cfg.NodeID, logg)
		if err != nil {
			logg.Fatalf("nats connect: %v", err)
		}
		defer bridge.Close()

		for _, hub := range []*realtime.Hub{chatHub.Hub, streamHub.Hub, notificationHub.Hub, videoHub.Hub} {
			hub.SetBridge(bridge)
		}
		if err := bridge.Attach(chatHub.Hub, streamHub.Hub, notificationHub.Hub, videoHub.Hub); err != nil {
			logg.Fatalf("nats attach: %v", err)
		}
	} else {
		logg.Warnf("NATS_URL not set; broadcasts stay node-local")
	}

	handler := vhttp.NewHandler(pool, authSvc, logg)
	router := vhttp.NewRouter(vhttp.RouterDeps{
		Handler:         handler,
		AuthMW:          middleware.NewAuth(authSvc),
		Config:          cfg,
		ChatHub:         chatHub,
		StreamHub:       streamHub,
		NotificationHub: notificationHub,
		VideoHub:        videoHub,
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router}
	go func() {
		logg.Infof("vidstream realtime server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	stop()
	logg.Infof("shutting down...")
	_ = srv.Shutdown(context.Background())
}

// ensure gin uses release mode in production
func init() {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}
