package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"sportiify/internal/cache"
	"sportiify/internal/config"
	"sportiify/internal/consul"
	"sportiify/internal/database"
	"sportiify/internal/logger"
	"sportiify/internal/predictions"
	"sportiify/internal/session"
	"sportiify/internal/storage"
	"sportiify/internal/telemetry"

	_ "github.com/joho/godotenv/autoload"
)

func gracefulShutdown(apiServer *http.Server, consulClient *consul.Client, serviceID string, log *slog.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	if err := consulClient.Deregister(serviceID); err != nil {
		log.Warn("Failed to deregister from Consul", "error", err)
	} else {
		log.Info("Deregistered from Consul")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exiting")
	done <- true
}

func main() {
	log := logger.New(consul.PredictionsService)
	logger.SetDefault(log)

	if err := config.ValidateJWTSecret(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	cfg := predictions.LoadConfigFromEnv()
	host := config.GetEnvOrDefault("PREDICTIONS_SERVICE_HOST", "localhost")
	consulAddr := config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500")
	consulToken := config.GetEnvOrDefault("CONSUL_HTTP_TOKEN", "")
	redisAddr := config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379")
	redisPassword := config.GetEnvOrDefault("REDIS_PASSWORD", "")
	redisDB, _ := strconv.Atoi(config.GetEnvOrDefault("REDIS_DB", "0"))

	log.Info("Starting Predictions Service", "port", cfg.Port, "host", host, "consul_addr", consulAddr, "redis_addr", redisAddr)

	ctx := context.Background()
	shutdownTracing := telemetry.Setup(ctx, consul.PredictionsService, log)

	db := database.New()
	if err := database.Migrate(ctx, db); err != nil {
		log.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to database")

	store := cache.Connect(ctx, redisAddr, redisPassword, redisDB, log)

	var videos storage.Service
	storageCfg, err := storage.ConfigFromEnv()
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		log.Info("Object storage not configured, competition videos disabled")
	case err != nil:
		log.Error("Invalid storage configuration", "error", err)
		os.Exit(1)
	default:
		videos, err = storage.New(ctx, storageCfg, log)
		if err != nil {
			log.Error("Failed to create storage client", "error", err)
			os.Exit(1)
		}
		if err := videos.EnsureBucketExists(ctx); err != nil {
			log.Warn("Video bucket check failed", "error", err)
		}
	}

	tokens, err := session.NewManager(os.Getenv("JWT_SECRET"), time.Hour)
	if err != nil {
		log.Error("Failed to create token verifier", "error", err)
		os.Exit(1)
	}

	consulClient, err := consul.NewClientWithToken(consulAddr, consulToken)
	if err != nil {
		log.Error("Failed to create Consul client", "error", err)
		os.Exit(1)
	}

	serviceID, err := consul.RegisterHTTPService(consulClient, consul.PredictionsService, host, cfg.Port, "predictions", "api")
	if err != nil {
		log.Error("Failed to register service with Consul", "error", err)
		os.Exit(1)
	}
	log.Info("Registered with Consul", "service_id", serviceID)

	apiServer := predictions.NewServer(cfg, predictions.Deps{
		DB:      db,
		Store:   predictions.NewRepository(db),
		Cache:   store,
		Storage: videos,
		Tokens:  tokens,
		Logger:  log,
	})

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, consulClient, serviceID, log, done)

	log.Info("Predictions Service listening", "port", cfg.Port)
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("HTTP server error", "error", err)
		os.Exit(1)
	}

	<-done

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Warn("Failed to flush traces", "error", err)
	}
	if err := db.Close(); err != nil {
		log.Warn("Failed to close database", "error", err)
	}
	log.Info("Graceful shutdown complete")
}
