package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/treasurehunt-go/internal/api"
	"github.com/mcoot/treasurehunt-go/internal/factory"
	"github.com/mcoot/treasurehunt-go/internal/services/auth"
	redisstorage "github.com/mcoot/treasurehunt-go/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load .env if present; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("could not load .env", slog.String("error", err.Error()))
	}

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CluesFile:   os.Getenv("CLUES_FILE"),
		AuthConfig:  auth.DefaultConfig(),
	}
	cfg.AuthConfig.Secret = []byte(os.Getenv("JWT_SECRET"))

	if raw := os.Getenv("SESSION_DURATION"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			logger.Error("invalid SESSION_DURATION", slog.String("value", raw), slog.String("error", err.Error()))
			os.Exit(1)
		}
		cfg.AuthConfig.SessionDuration = d
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	if cfg.StorageType == factory.StorageTypePostgres && cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL required when STORAGE_TYPE=postgres")
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create application factory
	app, err := factory.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	// Provision the admin account
	adminUsername := getEnvOrDefault("ADMIN_USERNAME", "admin")
	created, err := app.AccountService.EnsureAdmin(ctx, adminUsername, getEnvOrDefault("ADMIN_PASSWORD", "admin123"))
	if err != nil {
		logger.Error("failed to provision admin", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if created && os.Getenv("ADMIN_PASSWORD") == "" {
		logger.Warn("admin created with the default password", slog.String("username", adminUsername))
	}

	// Create server
	serverConfig := api.DefaultServerConfig()
	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			logger.Error("invalid PORT", slog.String("value", raw))
			os.Exit(1)
		}
		serverConfig.Port = port
	}
	server := api.NewServer(app.Router(), serverConfig, logger)

	// Bind before logging so the reported address is the real one
	listener, err := server.Listen()
	if err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Serve in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", storageName(cfg.StorageType)),
		slog.Int("levels", app.Clues.Len()),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func storageName(storageType string) string {
	if storageType == "" {
		return factory.StorageTypeMemory
	}
	return storageType
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
