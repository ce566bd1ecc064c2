package predictions

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"sportiify/internal/cache"
	"sportiify/internal/database"
	"sportiify/internal/session"
	"sportiify/internal/storage"

	"github.com/gin-gonic/gin"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	port int

	db      database.Service
	storage storage.Service
	handler *Handler
	tokens  session.Verifier
	logger  *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port             int
	PredictorURL     string
	PredictorTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
}

// LoadConfigFromEnv loads server configuration from environment variables
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("PREDICTIONS_SERVICE_PORT", "8082"))

	return &Config{
		Port:             port,
		PredictorURL:     getEnv("PREDICTOR_URL", "http://localhost:5000"),
		PredictorTimeout: getEnvDuration("PREDICTOR_TIMEOUT", 30*time.Second),
		ReadTimeout:      getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:     getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:      getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
	}
}

// Deps are the collaborators NewServer wires together. Storage may be nil.
type Deps struct {
	DB      database.Service
	Store   Store
	Cache   cache.Store
	Storage storage.Service
	Tokens  session.Verifier
	Logger  *slog.Logger
}

// NewServer creates and configures the predictions HTTP server
func NewServer(cfg *Config, deps Deps) *http.Server {
	var videos VideoLinker
	if deps.Storage != nil {
		videos = deps.Storage
	}

	predictor := NewHTTPPredictor(cfg.PredictorURL, cfg.PredictorTimeout)
	service := NewService(deps.Store, deps.Cache, predictor, videos, deps.Logger)

	appServer := &Server{
		port:    cfg.Port,
		db:      deps.DB,
		storage: deps.Storage,
		handler: NewHandler(service, deps.Logger),
		tokens:  deps.Tokens,
		logger:  deps.Logger,
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           appServer.RegisterRoutes(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	deps.Logger.Info("HTTP server configured", "port", cfg.Port, "predictor", cfg.PredictorURL)
	return server
}

// Health handles GET /health and reports the database and storage state
func (s *Server) Health(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"service": "predictions-service",
	}
	status := http.StatusOK

	if s.db != nil {
		dbHealth := s.db.Health()
		resp["database"] = dbHealth
		if dbHealth["status"] != "up" {
			resp["status"] = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	if s.storage == nil {
		resp["storage"] = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.storage.Health(ctx); err != nil {
			resp["storage"] = err.Error()
		} else {
			resp["storage"] = "up"
		}
	}

	c.JSON(status, resp)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
