package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"skill_swap/internal/auth"
	"skill_swap/internal/config"
	"skill_swap/internal/handler"
	"skill_swap/internal/middleware"
	"skill_swap/internal/realtime"
	"skill_swap/internal/repository"
	"skill_swap/internal/service"
	"skill_swap/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Log.Level)
	defer func() { _ = appLogger.Sync() }()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к PostgreSQL
	dbPool, err := repository.NewPool(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()
	appLogger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, dbPool, appLogger); err != nil {
			appLogger.Fatal("Failed to apply migrations", "error", err)
		}
	}

	// Redis нужен лимитеру и брокеру событий; лимитер переживает его недоступность
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		if cfg.Realtime.Backend == config.RealtimeBackendRedis {
			appLogger.Fatal("Failed to connect to Redis", "error", err)
		}
		appLogger.Warn("Redis is unavailable, rate limiting fails open", "error", err)
	} else {
		appLogger.Info("Redis connection established")
	}

	repos := repository.NewRepositories(dbPool, rdb, appLogger)

	hub := realtime.NewHub(appLogger)
	var notifier service.MessageNotifier = hub
	var broker *realtime.RedisBroker
	if cfg.Realtime.Backend == config.RealtimeBackendRedis {
		broker = realtime.NewRedisBroker(rdb, cfg.Realtime.Channel, hub, appLogger)
		if err := broker.Start(ctx); err != nil {
			appLogger.Fatal("Failed to subscribe to realtime channel", "error", err)
		}
		notifier = broker
	}

	services := service.NewServices(repos, notifier, cfg, appLogger)

	authenticator, err := auth.New(cfg, services, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to configure authentication", "error", err)
	}
	appLogger.Info("Authentication configured", "mode", cfg.Auth.Mode)

	janitor, err := service.NewSessionJanitor(repos.User, cfg.Sessions.CleanupSchedule, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to schedule session cleanup", "error", err)
	}
	janitor.Start()

	handlers := handler.NewHandlers(services, hub, authenticator, cfg, appLogger)
	router := handler.NewRouter(cfg, handlers, services, middleware.NewAuthMiddleware(authenticator, appLogger), appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	// Живые соединения http.Server не отслеживает, их закрывает реестр
	hub.Shutdown()
	if broker != nil {
		if err := broker.Close(); err != nil {
			appLogger.Warn("Failed to close realtime broker", "error", err)
		}
	}
	janitor.Stop(shutdownCtx)

	appLogger.Info("Server exited")
}
