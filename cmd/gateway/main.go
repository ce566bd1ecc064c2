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

	"sportiify/internal/config"
	"sportiify/internal/consul"
	"sportiify/internal/gateway"
	"sportiify/internal/logger"
	"sportiify/internal/session"
	"sportiify/internal/telemetry"

	_ "github.com/joho/godotenv/autoload"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	log := logger.New("api-gateway")
	logger.SetDefault(log)

	if err := config.ValidateJWTSecret(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	port := config.GetEnvOrDefault("GATEWAY_PORT", "8080")
	consulAddr := config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500")
	consulToken := config.GetEnvOrDefault("CONSUL_HTTP_TOKEN", "")
	origins := config.AllowedOrigins()

	log.Info("Starting API Gateway", "port", port, "consul_addr", consulAddr, "allowed_origins", origins)

	shutdownTracing := telemetry.Setup(context.Background(), "api-gateway", log)

	consulClient, err := consul.NewClientWithToken(consulAddr, consulToken)
	if err != nil {
		log.Error("Failed to create Consul client", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Consul")

	tokens, err := session.NewManager(os.Getenv("JWT_SECRET"), time.Hour)
	if err != nil {
		log.Error("Failed to create token verifier", "error", err)
		os.Exit(1)
	}

	router := gateway.SetupRouter(consulClient, tokens, origins, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           otelhttp.NewHandler(router, "api-gateway"),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("API Gateway listening", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down API Gateway")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Warn("Failed to flush traces", "error", err)
	}

	log.Info("API Gateway stopped")
}
