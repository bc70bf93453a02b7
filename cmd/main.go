package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Eprince-hub/live-chat/internal/auth"
	"github.com/Eprince-hub/live-chat/internal/cache"
	"github.com/Eprince-hub/live-chat/internal/config"
	"github.com/Eprince-hub/live-chat/internal/domain"
	"github.com/Eprince-hub/live-chat/internal/handler"
	"github.com/Eprince-hub/live-chat/internal/hub"
	"github.com/Eprince-hub/live-chat/internal/registry"
	"github.com/Eprince-hub/live-chat/internal/repository"
	"github.com/Eprince-hub/live-chat/internal/service"
	"github.com/Eprince-hub/live-chat/pkg/database"
	pkglog "github.com/Eprince-hub/live-chat/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, ServiceName: "session-gateway"})
	logger := pkglog.L()

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting session gateway")

	if cfg.Auth.Secret == "" {
		logger.Fatal().Msg("auth.secret (JWT_SECRET) must be set")
	}

	// Connect to the database shared with the API service
	db, err := database.New(cfg.Database.ToDatabase())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// The gateway owns the chat tables; the streams table belongs to the
	// API service and is only read here.
	if err := database.AutoMigrate(db, &domain.ChatMessageModel{}, &domain.ReactionModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate chat tables")
	}

	messageRepo := repository.NewGormMessageRepository(db)
	streamRepo := repository.NewGormStreamRepository(db)

	// Redis: history page cache + viewer presence
	historyCache, err := cache.NewRedisHistoryCache(cfg.Redis, cfg.Redis.CachePrefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect history cache")
	}
	defer historyCache.Close()

	presence, err := registry.NewRedisPresence(cfg.Redis, cfg.Server.InstanceID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect presence registry")
	}
	defer presence.Close()

	logger.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")

	verifier := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)

	// Hub event loop
	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run()

	sessionSvc := service.NewSessionService(wsHub, messageRepo, streamRepo, historyCache, presence, cfg.History)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sessionSvc.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start session service")
	}
	defer sessionSvc.Stop()

	// HTTP: WebSocket endpoint + history REST + health
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(pkglog.GinMiddleware(logger), gin.Recovery())

	handler.NewWSHandler(wsHub, sessionSvc, verifier, cfg.WebSocket).RegisterRoutes(router)
	handler.NewHTTPHandler(sessionSvc).RegisterRoutes(router)

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("session gateway listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down session gateway")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("session gateway stopped")
}
