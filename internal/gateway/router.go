// Package gateway implements the API Gateway: token checks on protected routes,
// service discovery and request routing to the backend services.
package gateway

import (
	"log/slog"

	"sportiify/internal/consul"
	"sportiify/internal/session"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the gateway router
func SetupRouter(discovery consul.ServiceDiscovery, tokens session.Verifier, origins []string, logger *slog.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware(origins))
	r.Use(StripIdentityHeaders())

	proxy := NewProxyHandler(discovery, logger)

	r.GET("/health", proxy.Health)

	// Auth service handles its own token check on check-token
	r.Any("/api/auth/*path", proxy.Proxy(consul.AuthService))

	predictions := proxy.Proxy(consul.PredictionsService)
	r.GET("/match-predictions", predictions)
	r.GET("/match-predictions/*path", predictions)
	r.GET("/videos/*competition", predictions)
	r.GET("/predict-match-outcome/*matchId", session.AuthGate(tokens), predictions)

	r.GET("/api/sports/*path", proxy.Proxy(consul.SportsService))

	return r
}
