package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"daycare-server/cache"
	"daycare-server/config"
	"daycare-server/database"
	"daycare-server/events"
	"daycare-server/jobs"
	"daycare-server/logger"
	"daycare-server/media"
	"daycare-server/middleware"
	"daycare-server/routes"
	"daycare-server/services"
	ws "daycare-server/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.AppConfig

	zl, err := logger.Init(cfg.Server.LogLevel, cfg.Server.GinMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.JWT.UsingDefaultSecret() {
		zap.L().Warn("JWT_SECRET is not set, signing tokens with the development default")
	}

	if cfg.Database.URL == "" {
		zap.L().Fatal("DB_URL is required")
	}
	if err := database.Initialize(cfg.Database.URL, cfg.Server.LogLevel); err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.Server.SeedDemo {
		if err := SeedDemoData(cfg.Database.URL); err != nil {
			zap.L().Error("Demo seed failed", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional infrastructure. Each one is skipped when unconfigured or
	// unreachable; the core API keeps working without it.
	var summaryCache cache.SummaryCache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zap.L().Warn("Redis unavailable, payment summary cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			summaryCache = cache.NewRedisSummaryCache(client, cfg.Redis.SummaryTTL)
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			zap.L().Warn("RabbitMQ unavailable, domain events disabled", zap.Error(err))
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	var uploader media.Uploader
	if cfg.Cloudinary.URL != "" {
		u, err := media.NewCloudinaryUploader(cfg.Cloudinary.URL)
		if err != nil {
			zap.L().Warn("Cloudinary misconfigured, photo uploads disabled", zap.Error(err))
		} else {
			uploader = u
		}
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	db := database.DB
	notifier := services.NewNotificationService(db, hub)
	scheduling := services.NewSchedulingService(db, notifier, publisher, summaryCache)
	jwtService := services.NewJWTService(db)

	if cfg.Jobs.TokenCleanupInterval > 0 {
		tokenCleanup := jobs.NewTokenCleanupJob(jwtService, cfg.Jobs.TokenCleanupInterval)
		tokenCleanup.Start()
		defer tokenCleanup.Stop()
	}

	if cfg.Jobs.AutoCompleteInterval > 0 {
		completion := jobs.NewScheduleCompletionJob(scheduling, cfg.Jobs.AutoCompleteInterval)
		completion.Start()
		defer completion.Stop()
	}

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	rateLimiter := middleware.NewRateLimiter()
	rateLimiter.StartCleanup(ctx, 10*time.Minute)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Origins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimitMiddleware(rateLimiter))
	router.Use(middleware.InputValidationMiddleware())

	routes.RegisterRoutes(router, routes.Deps{
		JWT:        jwtService,
		Scheduling: scheduling,
		Attendance: services.NewAttendanceService(db, notifier),
		Incidents:  services.NewIncidentService(db, notifier),
		Notifier:   notifier,
		Sockets:    ws.NewNotificationHandler(hub, db),
		Uploader:   uploader,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.GinMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Graceful shutdown failed", zap.Error(err))
	}
}
