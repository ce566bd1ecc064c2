package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"sportiify/internal/config"
	"sportiify/internal/consul"
	"sportiify/internal/kafka"
	"sportiify/internal/logger"
	"sportiify/internal/notify"
	"sportiify/internal/telemetry"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	log := logger.New(consul.NotifierService)
	logger.SetDefault(log)
	log.Info("Starting Notifier Service...")

	port := config.GetEnvOrDefault("NOTIFIER_SERVICE_PORT", "8085")
	host := config.GetEnvOrDefault("NOTIFIER_SERVICE_HOST", "localhost")
	consulAddr := config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500")
	consulToken := config.GetEnvOrDefault("CONSUL_HTTP_TOKEN", "")
	redisAddr := config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379")
	redisPassword := config.GetEnvOrDefault("REDIS_PASSWORD", "")
	redisDB, _ := strconv.Atoi(config.GetEnvOrDefault("REDIS_DB", "0"))

	portNum, err := strconv.Atoi(port)
	if err != nil {
		log.Error("Invalid NOTIFIER_SERVICE_PORT", "port", port)
		os.Exit(1)
	}

	kafkaCfg, err := kafka.LoadConfig()
	if err != nil {
		log.Error("Kafka configuration missing", "error", err)
		os.Exit(1)
	}
	kafkaCfg.ClientID = config.GetEnvOrDefault("KAFKA_CLIENT_ID", "sportiify-notifier")
	dlqTopic := config.GetEnvOrDefault("KAFKA_TOPIC_USER_EVENTS_DLQ", "user-events-dlq")
	group := config.GetEnvOrDefault("KAFKA_CONSUMER_GROUP", "notifier-group")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdownTracing := telemetry.Setup(ctx, consul.NotifierService, log)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	store := notify.NewRedisIdempotencyStore(redisClient, log)

	mailCfg := notify.MailConfigFromEnv()
	if mailCfg.Mode == "smtp" {
		if err := config.ValidateEnv([]string{"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD"}); err != nil {
			log.Error("Invalid SMTP configuration", "error", err)
			os.Exit(1)
		}
	}
	mailer := notify.NewMailer(mailCfg, log)
	log.Info("Mailer initialized", "mode", mailCfg.Mode)

	producer, err := kafka.NewProducer(kafkaCfg, log)
	if err != nil {
		log.Error("Failed to create DLQ producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	processor := notify.NewProcessor(mailer, store, producer, dlqTopic, log)
	consumer, err := notify.NewConsumer(&notify.ConsumerConfig{
		Brokers:       kafkaCfg.Brokers,
		Topic:         kafkaCfg.UserEventsTopic,
		DLQTopic:      dlqTopic,
		ConsumerGroup: group,
	}, processor, log)
	if err != nil {
		log.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error("Consumer error", "error", err)
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery())
	handler := notify.NewHandler(func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}, store, log)
	r.GET("/health", handler.HealthCheck)

	consulClient, err := consul.NewClientWithToken(consulAddr, consulToken)
	if err != nil {
		log.Error("Failed to create Consul client", "error", err)
		os.Exit(1)
	}
	serviceID, err := consul.RegisterHTTPService(consulClient, consul.NotifierService, host, portNum, "notifications", "kafka-consumer")
	if err != nil {
		log.Error("Failed to register with Consul", "error", err)
		os.Exit(1)
	}
	log.Info("Registered with Consul", "service_id", serviceID)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      otelhttp.NewHandler(r, consul.NotifierService),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server started", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Notifier Service...")
	if err := consulClient.Deregister(serviceID); err != nil {
		log.Error("Failed to deregister from Consul", "error", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", "error", err)
	}
	if remaining := producer.Flush(2000); remaining > 0 {
		log.Warn("DLQ messages not flushed", "remaining", remaining)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", "error", err)
	}
	log.Info("Notifier Service stopped")
}
