package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"warbler/internal/config"
	"warbler/internal/handlers"
	"warbler/internal/metrics"
	"warbler/internal/middleware"
	"warbler/internal/repositories"
	"warbler/internal/seed"
	"warbler/internal/services"
	"warbler/pkg/rabbitmq"
	"warbler/pkg/session"
)

// NewApp builds the HTTP application described by cfg. The returned cleanup
// function releases the database, session store and broker connections.
func NewApp(cfg *config.Config) (*fiber.App, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				slog.Error("error during cleanup", "error", err)
			}
		}
	}

	// --- Database ---
	db, err := repositories.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	closers = append(closers, sqlDB.Close)
	if cfg.DatabaseDriver == "sqlite" {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := repositories.Migrate(db); err != nil {
		cleanup()
		return nil, nil, err
	}

	// --- Session store ---
	var sessions session.Store = session.NewMemoryStore()
	redisStatus := "disabled"
	if cfg.RedisURL != "" {
		redisStore, err := session.Dial(context.Background(), cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, redisStore.Close)
		sessions = redisStore
		redisStatus = "connected"
	}

	// --- Event publisher ---
	var events services.EventPublisher
	mqStatus := "disabled"
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, mqClient.Close)
		events = mqClient
		mqStatus = "connected"
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	messageRepo := repositories.NewGORMMessageRepository(db)
	followRepo := repositories.NewGORMFollowRepository(db)
	likeRepo := repositories.NewGORMLikeRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, sessions, cfg.JWTSecret,
		services.WithBcryptCost(cfg.BcryptCost),
		services.WithSessionTTL(cfg.SessionTTL),
		services.WithAuthEvents(events),
	)
	userService := services.NewUserService(userRepo, authService, events)
	graphService := services.NewGraphService(userRepo, followRepo, events)
	likeService := services.NewLikeService(messageRepo, likeRepo, events)
	messageService := services.NewMessageService(messageRepo, events)
	timelineService := services.NewTimelineService(userRepo, followRepo, messageRepo, likeRepo)

	if cfg.SeedDemoData {
		defaults := cfg.ProfileDefaults()
		seeder := seed.New(authService, graphService, likeService, messageRepo,
			seed.RegisterDefaults{ImageURL: defaults.ImageURL, HeaderImageURL: defaults.HeaderImageURL},
			seed.DefaultOptions())
		if _, err := seeder.Run(context.Background()); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(authService, userService, graphService, timelineService, cfg.ProfileDefaults())
	messageHandler := handlers.NewMessageHandler(messageService, likeService)
	timelineHandler := handlers.NewTimelineHandler(timelineService)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{AppName: "warbler"})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger
	prom := metrics.HTTP()
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// --- API Routes ---
	apiV1 := app.Group("/api/v1", middleware.LoadSession(authService))
	authHandler.RegisterRoutes(apiV1)
	userHandler.RegisterRoutes(apiV1)
	messageHandler.RegisterRoutes(apiV1)
	timelineHandler.RegisterRoutes(apiV1)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, health, dbStatus := fiber.StatusOK, "healthy", "connected"
		if err := sqlDB.PingContext(c.UserContext()); err != nil {
			status, health, dbStatus = fiber.StatusServiceUnavailable, "unhealthy", "unreachable"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":   health,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"redis":    redisStatus,
			"rabbitmq": mqStatus,
		})
	})

	return app, cleanup, nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	app, cleanup, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		serverErr <- app.Listen(cfg.Port)
	}()

	// Wait for interrupt signal to gracefully shut down the server
	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("server failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		slog.Error("error during Fiber shutdown", "error", err)
	}

	slog.Info("server gracefully stopped")
}
