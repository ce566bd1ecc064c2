package auth

import (
	"sportiify/internal/session"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the auth endpoints on r
func RegisterRoutes(r gin.IRouter, h *Handler, tokens session.Verifier) {
	r.GET("/health", h.Health)

	api := r.Group("/api/auth")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.GET("/check-token", session.AuthGate(tokens), h.CheckToken)
	}
}
