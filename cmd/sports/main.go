package main

import (
	"context"
	"errors"
	"flag"
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
	"sportiify/internal/logger"
	"sportiify/internal/sports"
	"sportiify/internal/telemetry"

	_ "github.com/joho/godotenv/autoload"
)

func gracefulShutdown(apiServer *http.Server, warmer *sports.Warmer, consulClient *consul.Client, serviceID string, log *slog.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	if err := consulClient.Deregister(serviceID); err != nil {
		log.Warn("Failed to deregister from Consul", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	warmer.Stop(ctx)
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exiting")
	done <- true
}

func main() {
	log := logger.New(consul.SportsService)
	logger.SetDefault(log)

	cfg, err := sports.LoadConfig(fetchConfigPath())
	if err != nil {
		log.Error("Invalid sports configuration", "error", err)
		os.Exit(1)
	}

	port, err := cfg.PortNumber()
	if err != nil {
		log.Error("Invalid sports configuration", "error", err)
		os.Exit(1)
	}

	host := config.GetEnvOrDefault("SPORTS_SERVICE_HOST", "localhost")
	consulAddr := config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500")
	consulToken := config.GetEnvOrDefault("CONSUL_HTTP_TOKEN", "")
	redisAddr := config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379")
	redisPassword := config.GetEnvOrDefault("REDIS_PASSWORD", "")
	redisDB, _ := strconv.Atoi(config.GetEnvOrDefault("REDIS_DB", "0"))

	ctx := context.Background()
	shutdownTracing := telemetry.Setup(ctx, consul.SportsService, log)

	store := cache.Connect(ctx, redisAddr, redisPassword, redisDB, log)
	service := sports.NewServiceFromConfig(cfg, store, log)
	log.Info("Starting Sports Service", "port", port, "sports", service.Sports(), "cache_ttl", cfg.CacheTTL)

	warmer, err := sports.NewWarmer(service, cfg.WarmSchedule, log)
	if err != nil {
		log.Error("Invalid warm schedule", "error", err)
		os.Exit(1)
	}

	consulClient, err := consul.NewClientWithToken(consulAddr, consulToken)
	if err != nil {
		log.Error("Failed to create Consul client", "error", err)
		os.Exit(1)
	}

	serviceID, err := consul.RegisterHTTPService(consulClient, consul.SportsService, host, port, "sports", "api")
	if err != nil {
		log.Error("Failed to register service with Consul", "error", err)
		os.Exit(1)
	}
	log.Info("Registered with Consul", "service_id", serviceID)

	apiServer := sports.NewServer(cfg, service, log)
	warmer.Start()

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, warmer, consulClient, serviceID, log, done)

	log.Info("Sports Service listening", "port", port)
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
	log.Info("Graceful shutdown complete")
}

// fetchConfigPath returns the -config flag, falling back to CONFIG_PATH
func fetchConfigPath() string {
	var path string
	flag.StringVar(&path, "config", "", "path to sports providers YAML file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}
