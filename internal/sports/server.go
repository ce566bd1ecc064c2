package sports

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sportiify/internal/config"
	"sportiify/internal/consul"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	handler *Handler
	service *Service
	logger  *slog.Logger
}

// NewServer creates and configures the sports HTTP server
func NewServer(cfg *Config, service *Service, logger *slog.Logger) *http.Server {
	s := &Server{
		handler: NewHandler(service, logger),
		service: service,
		logger:  logger,
	}

	logger.Info("HTTP server configured", "port", cfg.Port, "sports", service.Sports())
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.RegisterRoutes(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// RegisterRoutes builds the HTTP handler
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: config.AllowedOrigins(),
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Accept", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/health", s.Health)
	mountRoutes(r, s.handler)

	return otelhttp.NewHandler(r, consul.SportsService)
}

func mountRoutes(r gin.IRouter, h *Handler) {
	api := r.Group("/api/sports")
	{
		api.GET("/featured", h.Featured)
		api.GET("/:sport/competitions", h.Competitions)
		api.GET("/:sport/competitions/:cid/matches", h.CompetitionMatches)
		api.GET("/:sport/matches", h.Matches)
	}
}

// Health handles GET /health
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": consul.SportsService,
		"sports":  s.service.Sports(),
	})
}

// PortNumber parses the configured port for service registration
func (c *Config) PortNumber() (int, error) {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid SPORTS_SERVICE_PORT %q", c.Port)
	}
	return port, nil
}
