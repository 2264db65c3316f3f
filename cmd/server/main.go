// Package main runs the ticketing platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stagepass/backend/config"
	"github.com/stagepass/backend/internal/access"
	"github.com/stagepass/backend/internal/artists"
	"github.com/stagepass/backend/internal/auth"
	"github.com/stagepass/backend/internal/emaillogs"
	"github.com/stagepass/backend/internal/events"
	"github.com/stagepass/backend/internal/middleware"
	"github.com/stagepass/backend/internal/orders"
	"github.com/stagepass/backend/internal/organizations"
	"github.com/stagepass/backend/internal/tickets"
	"github.com/stagepass/backend/internal/venues"
	"github.com/stagepass/backend/pkg/database"
	"github.com/stagepass/backend/pkg/queue"
	"github.com/stagepass/backend/pkg/redis"
	"github.com/stagepass/backend/pkg/response"
	"github.com/stagepass/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			MediaBucket:          cfg.AWS.MediaBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Authorization gate: roles are read from the database per request.
	gate := access.NewGate(access.NewRepository(pool))

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Organizations and invites
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo, gate, jobQueue, cfg.App.FrontendBaseURL, logger)

	// Artists and venues
	artistRepo := artists.NewRepository(pool)
	artistHandler := artists.NewHandler(artistRepo, gate, logger)
	venueRepo := venues.NewRepository(pool)
	venueHandler := venues.NewHandler(venueRepo, gate, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, gate, s3Client, logger)

	// Ticket types, pricing, inventory
	ticketRepo := tickets.NewRepository(pool)
	ledger := tickets.NewLedger(pool, logger)
	ticketHandler := tickets.NewHandler(ticketRepo, ledger, gate, logger)

	// Orders
	orderRepo := orders.NewRepository(pool)
	orderHandler := orders.NewHandler(orderRepo, ticketRepo, ledger, jobQueue, logger)

	// Email logs (platform admin)
	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Public reads. OptionalJWT lets members see their private artists
	// and venues through the same endpoints.
	public := router.Group("")
	public.Use(middleware.OptionalJWT(jwtService))
	{
		public.GET("/artists", artistHandler.List)
		public.GET("/artists/:id", artistHandler.Get)
		public.GET("/venues", venueHandler.List)
		public.GET("/venues/:id", venueHandler.Get)
		public.GET("/events", eventHandler.List)
		public.GET("/events/:id", eventHandler.Get)
		public.GET("/events/:id/ticket_types", ticketHandler.ListByEvent)
		public.GET("/invites/:token", orgHandler.GetInvite)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/me", authHandler.Me)
		api.GET("/users", middleware.RequireScope(gate, access.ScopeUserRead), authHandler.List)

		// Organizations
		api.GET("/organizations", orgHandler.ListMine)
		api.POST("/organizations", middleware.RequireScope(gate, access.ScopeOrgAdmin), orgHandler.Create)
		api.GET("/organizations/:id", orgHandler.Get)
		api.PATCH("/organizations/:id", orgHandler.Update)
		api.GET("/organizations/:id/members", orgHandler.ListMembers)
		api.POST("/organizations/:id/invites", orgHandler.Invite)
		api.GET("/organizations/:id/artists", artistHandler.ListForOrganization)
		api.GET("/organizations/:id/venues", venueHandler.ListForOrganization)
		api.GET("/organizations/:id/events", eventHandler.ListForOrganization)
		api.POST("/invites/:token/accept", orgHandler.AcceptInvite)
		api.POST("/invites/:token/decline", orgHandler.DeclineInvite)

		// Artists and venues
		api.POST("/artists", artistHandler.Create)
		api.PATCH("/artists/:id", artistHandler.Update)
		api.PUT("/artists/:id/toggle_privacy", artistHandler.TogglePrivacy)
		api.POST("/venues", venueHandler.Create)
		api.PATCH("/venues/:id", venueHandler.Update)
		api.PUT("/venues/:id/toggle_privacy", venueHandler.TogglePrivacy)

		// Events
		api.POST("/events", eventHandler.Create)
		api.PATCH("/events/:id", eventHandler.Update)
		api.POST("/events/:id/promo_image", eventHandler.PromoImageUploadURL)

		// Ticket types and pricing
		api.POST("/events/:id/ticket_types", ticketHandler.Create)
		api.PATCH("/ticket_types/:id", ticketHandler.Update)
		api.POST("/ticket_types/:id/ticket_pricing", ticketHandler.AddPricing)
		api.PATCH("/ticket_pricing/:id", ticketHandler.UpdatePricing)
		api.DELETE("/ticket_pricing/:id", ticketHandler.DeletePricing)

		// Orders
		api.POST("/orders", orderHandler.Create)
		api.GET("/orders", orderHandler.ListMine)
		api.GET("/orders/:id", orderHandler.Get)
		api.POST("/orders/:id/items", orderHandler.AddItem)
		api.POST("/orders/:id/items/:item_id/release", orderHandler.ReleaseItem)

		// Email logs (platform admin)
		api.GET("/email_logs", middleware.RequireScope(gate, access.ScopeOrgAdmin), emailLogsHandler.ListRecent)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
