package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/sipit-backend/config"
	"github.com/ikkim/sipit-backend/internal/app/controller"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	"github.com/ikkim/sipit-backend/internal/app/service"
	"github.com/ikkim/sipit-backend/internal/cache"
	"github.com/ikkim/sipit-backend/internal/db"
	"github.com/ikkim/sipit-backend/internal/metrics"
	"github.com/ikkim/sipit-backend/internal/middleware"
	"github.com/ikkim/sipit-backend/internal/router"
	"github.com/ikkim/sipit-backend/internal/scheduler"
	"github.com/ikkim/sipit-backend/internal/storage"
	"github.com/ikkim/sipit-backend/internal/websocket"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"github.com/ikkim/sipit-backend/pkg/places"
	redisclient "github.com/ikkim/sipit-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := cfg.Server.LogLevel
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Server.LogFormat,
		Service:     "sipit-backend",
		EnableColor: cfg.Server.LogFormat == "console",
	})

	logger.Info("Starting Sip-It Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	gdb, err := db.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis
	rdb, err := redisclient.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", err)
	}
	defer func() {
		if err := redisclient.Close(rdb); err != nil {
			logger.Error("Failed to close redis connection", err)
		}
	}()
	nearbyCache := cache.NewNearbyCache(rdb, cfg.Cache.NearbyCafesTTL)
	preferencesCache := cache.NewPreferencesCache(rdb, cfg.Cache.PreferencesTTL)

	// Place catalog
	catalog, err := places.NewClient(places.Config{
		APIKey:            cfg.Places.APIKey,
		BaseURL:           cfg.Places.BaseURL,
		Timeout:           cfg.Places.Timeout,
		RequestsPerSecond: cfg.Places.RequestsPerSecond,
		Observer:          metrics.PlacesObserver,
	})
	if err != nil {
		logger.Fatal("Failed to create places client", err)
	}

	uploader := storage.NewS3Storage(ctx, &cfg.S3)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Repositories
	userRepo := repository.NewUserRepository(gdb)
	cafeRepo := repository.NewCafeRepository(gdb)
	reviewRepo := repository.NewReviewRepository(gdb)
	followRepo := repository.NewFollowRepository(gdb)
	notificationRepo := repository.NewNotificationRepository(gdb)
	prefsRepo := repository.NewPreferencesRepository(gdb)
	menuRepo := repository.NewMenuRepository(gdb)
	collectionRepo := repository.NewCollectionRepository(gdb)

	// Services
	aggregator := service.NewRatingAggregator(reviewRepo, cafeRepo)
	cafeService := service.NewCafeService(cafeRepo, reviewRepo, menuRepo, collectionRepo, catalog, nearbyCache)
	reviewService := service.NewReviewService(gdb, reviewRepo, cafeRepo, followRepo, notificationRepo, aggregator, nearbyCache, hub)
	userService := service.NewUserService(gdb, userRepo, prefsRepo, followRepo, reviewRepo, notificationRepo, hub)
	notificationService := service.NewNotificationService(notificationRepo)

	controllers := router.Controllers{
		Cafe:         controller.NewCafeController(cafeService, reviewService),
		Review:       controller.NewReviewController(reviewService),
		User:         controller.NewUserController(userService),
		Menu:         controller.NewMenuController(service.NewMenuService(menuRepo)),
		Notification: controller.NewNotificationController(notificationService),
		Feed:         controller.NewFeedController(service.NewFeedService(reviewRepo, followRepo)),
		Preferences:  controller.NewPreferencesController(service.NewPreferencesService(prefsRepo, preferencesCache)),
		Collection:   controller.NewCollectionController(service.NewCollectionService(collectionRepo, cafeRepo, reviewRepo)),
		Upload:       controller.NewUploadController(service.NewUploadService(uploader)),
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer, userRepo)
	health := func() error {
		hctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(hctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := redisclient.Ping(hctx, rdb); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}

	engine := router.NewRouter(
		controllers,
		authMiddleware,
		websocket.NewHandler(hub, cfg.CORS.AllowedOrigins),
		metrics.Handler(metrics.NewRegistry()),
		health,
		cfg,
	).Setup()

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.NewScheduler(cfg.Scheduler, cafeService, notificationService)
		if err := jobs.Start(); err != nil {
			logger.Fatal("Failed to start scheduler", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	if jobs != nil {
		jobs.Stop()
	}

	logger.Info("Server stopped successfully")
}
