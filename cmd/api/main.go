package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/residence-admin-api/internal/config"
	"github.com/noah-isme/residence-admin-api/internal/database"
	"github.com/noah-isme/residence-admin-api/internal/handler"
	"github.com/noah-isme/residence-admin-api/internal/middleware"
	"github.com/noah-isme/residence-admin-api/internal/repository"
	"github.com/noah-isme/residence-admin-api/internal/router"
	"github.com/noah-isme/residence-admin-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if cfg.IsProduction() {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("%v", err)
	}

	probes := map[string]handler.HealthProbe{"postgres": database.PostgresProbe(db)}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		probes["redis"] = database.RedisProbe(redisClient)
	} else {
		logger.Warn().Msg("redis url not set, activity stats will not be cached")
	}

	var publisher service.EventPublisher
	if cfg.NATSURL != "" {
		natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer drainNATS(natsConn, logger)
		publisher = natsConn
		probes["nats"] = database.NATSProbe(natsConn)
	}

	activityRepo := repository.NewActivityLogRepository(db)
	activityService := service.NewActivityLogService(activityRepo, service.ActivityLogServiceConfig{
		Cache:        redisClient,
		CacheTTL:     cfg.StatsCacheTTL,
		Publisher:    publisher,
		PurgeSubject: cfg.PurgeSubject,
		Location:     cfg.Location,
	}, logger)
	activityHandler := handler.NewActivityLogHandler(activityService, handler.ActivityLogGuards{
		Privileged:  middleware.RequireRole("admin", "super_admin"),
		Permissions: middleware.PermissionsFromContext,
		Purge:       middleware.RateLimit("activity_logs_purge", cfg.PurgeRateLimit, cfg.PurgeRateWindow),
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.AllowOrigins,
		AccessLog:    !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		ActivityLogHandler: activityHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
		HealthProbes:       probes,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func drainNATS(conn *nats.Conn, logger zerolog.Logger) {
	if err := conn.Drain(); err != nil {
		logger.Warn().Err(err).Msg("failed to drain nats connection")
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
