package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nutrack/nutrack/backend/config"
	"github.com/nutrack/nutrack/backend/internal/database"
	"github.com/nutrack/nutrack/backend/internal/logger"
	"github.com/nutrack/nutrack/backend/internal/router"
	"github.com/nutrack/nutrack/backend/internal/server"
	"github.com/nutrack/nutrack/backend/internal/service"
	"github.com/nutrack/nutrack/backend/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	opts := service.Options{JWTSecret: cfg.JWTSecret, DraftTTL: cfg.DraftTTL}

	deps := router.Deps{
		DB:               db,
		RateLimitPerHour: cfg.RateLimitPerHour,
		AllowedOrigins:   cfg.AllowedOrigins,
	}
	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer client.Close()
		opts.Redis = client
		deps.Redis = client
	} else {
		logger.Warn("Redis not configured, meal drafts are kept in memory")
	}

	s3, err := config.NewS3Config(ctx, cfg)
	switch {
	case errors.Is(err, config.ErrStorageDisabled):
		logger.Info("Report export disabled, no bucket configured")
	case err != nil:
		logger.Fatal("Failed to initialize S3", "error", err)
	default:
		opts.Exporter = s3
	}

	deps.Services = service.New(store.New(db), opts)
	srv := server.New(cfg, router.SetupRouter(deps))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("Server error", "error", err)
		}
	case sig := <-quit:
		logger.Info("Received signal", "signal", sig.String())
	}

	logger.Info("Shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
