// Package main is the entrypoint for the RecetApp API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/recetapp/recetapp/internal/auth"
	"github.com/recetapp/recetapp/internal/cache"
	"github.com/recetapp/recetapp/internal/config"
	"github.com/recetapp/recetapp/internal/handler"
	"github.com/recetapp/recetapp/internal/metrics"
	"github.com/recetapp/recetapp/internal/repository"
	"github.com/recetapp/recetapp/internal/server"
	"github.com/recetapp/recetapp/internal/service"
	"github.com/recetapp/recetapp/internal/storage"
	"github.com/recetapp/recetapp/internal/upload"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.RunMigrations {
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Error(
				"failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// The recipe cache is optional. Interfaces stay nil when it is off.
	var recipeCache service.RecipeCache
	var cacheHealth handler.HealthChecker
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cache.Config{URL: cfg.RedisURL, TTL: cfg.CacheTTL})
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		recipeCache = cacheClient
		cacheHealth = cacheClient
		logger.Info("connected to Redis")
	} else {
		logger.Info("recipe cache disabled")
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize image storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	uploader := upload.NewUploader(store, cfg.MaxUploadSize)

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to initialize token manager", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(registry)

	userService := service.NewUserService(repo, tokens, recorder)
	recipeService := service.NewRecipeService(repo, uploader, recipeCache, recorder)

	r := handler.NewRouter(handler.RouterConfig{
		Logger:             logger,
		IsDevelopment:      cfg.IsDevelopment(),
		Users:              userService,
		Recipes:            recipeService,
		Images:             uploader,
		Tokens:             tokens,
		DB:                 repo,
		Cache:              cacheHealth,
		Metrics:            recorder,
		MetricsHandler:     metrics.Handler(registry),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxBodySize:        cfg.MaxRequestBodySize,
		MaxUploadBodySize:  cfg.MaxMultipartBodySize(),
	})

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"storage", cfg.StorageBackend,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newStorage builds the image backend selected by STORAGE_BACKEND.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal:
		return storage.NewLocalStorage(cfg.UploadDir)
	case config.StorageS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStorageBackend, cfg.StorageBackend)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
