package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"sportiify/internal/auth"
	"sportiify/internal/config"
	"sportiify/internal/consul"
	"sportiify/internal/database"
	kafkapkg "sportiify/internal/kafka"
	"sportiify/internal/logger"
	"sportiify/internal/session"
	"sportiify/internal/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	log := logger.New(consul.AuthService)
	logger.SetDefault(log)

	if err := config.ValidateJWTSecret(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	port := config.GetEnvOrDefault("AUTH_SERVICE_PORT", "8081")
	host := config.GetEnvOrDefault("AUTH_SERVICE_HOST", "localhost")
	consulAddr := config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500")
	consulToken := config.GetEnvOrDefault("CONSUL_HTTP_TOKEN", "")
	tokenTTL := config.GetDurationOrDefault("JWT_TTL", time.Hour)

	log.Info("Starting Auth Service", "port", port, "host", host, "consul_addr", consulAddr)

	ctx := context.Background()
	shutdownTracing := telemetry.Setup(ctx, consul.AuthService, log)

	db := database.New()
	if err := database.Migrate(ctx, db); err != nil {
		log.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to database")

	tokens, err := session.NewManager(os.Getenv("JWT_SECRET"), tokenTTL)
	if err != nil {
		log.Error("Failed to create token manager", "error", err)
		os.Exit(1)
	}

	opts := []auth.Option{}
	var producer *kafkapkg.Producer
	if config.GetEnvOrDefault("ENABLE_KAFKA", "true") == "true" && os.Getenv("KAFKA_BROKERS") != "" {
		kafkaConfig, err := kafkapkg.LoadConfig()
		if err != nil {
			log.Warn("Failed to load Kafka config, auth events disabled", "error", err)
		} else if producer, err = kafkapkg.NewProducer(kafkaConfig, log); err != nil {
			log.Warn("Failed to create Kafka producer, auth events disabled", "error", err)
		} else {
			log.Info("Kafka producer initialized", "brokers", kafkaConfig.Brokers, "topic", kafkaConfig.UserEventsTopic)
			opts = append(opts, auth.WithEvents(producer))
		}
	} else {
		log.Info("Kafka disabled, auth events will not be published")
	}

	authService := auth.NewService(auth.NewRepository(db), tokens, log, opts...)
	authHandler := auth.NewHandler(authService, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: config.AllowedOrigins(),
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", session.TokenHeader},
		MaxAge:       12 * time.Hour,
	}))
	auth.RegisterRoutes(r, authHandler, tokens)

	portNum, err := strconv.Atoi(port)
	if err != nil {
		log.Error("Invalid AUTH_SERVICE_PORT", "port", port)
		os.Exit(1)
	}

	consulClient, err := consul.NewClientWithToken(consulAddr, consulToken)
	if err != nil {
		log.Error("Failed to create Consul client", "error", err)
		os.Exit(1)
	}

	serviceID, err := consul.RegisterHTTPService(consulClient, consul.AuthService, host, portNum, "auth", "jwt")
	if err != nil {
		log.Error("Failed to register service with Consul", "error", err)
		os.Exit(1)
	}
	log.Info("Registered with Consul", "service_id", serviceID)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           otelhttp.NewHandler(r, consul.AuthService),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Auth Service listening", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Auth Service")

	if err := consulClient.Deregister(serviceID); err != nil {
		log.Warn("Failed to deregister from Consul", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if producer != nil {
		producer.Close()
	}
	if err := db.Close(); err != nil {
		log.Warn("Failed to close database", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", "error", err)
	}

	log.Info("Auth Service stopped")
}
