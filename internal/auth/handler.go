package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"sportiify/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Handler handles authentication-related HTTP requests
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new authentication handler
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register handles POST /api/auth/register
// @Summary Create an account
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Name, email and password"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": validationMessage(err)})
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"msg": "User already exists"})
		case errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"msg": "The password must be at most 72 bytes"})
		default:
			h.logger.Error("Failed to register user", "email", NormalizeEmail(req.Email), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		}
		return
	}

	h.logger.Info("User registered", "user_id", resp.User.ID)
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
// @Summary Log in with email and password
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Email and password"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": validationMessage(err)})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid credentials"})
		default:
			h.logger.Error("Failed to log in user", "email", NormalizeEmail(req.Email), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckToken handles GET /api/auth/check-token; AuthGate has already verified the token
// @Summary Report whether the session token is valid
// @Produce json
// @Success 200 {object} TokenStatus
// @Failure 401 {object} map[string]string
// @Router /api/auth/check-token [get]
func (h *Handler) CheckToken(c *gin.Context) {
	claims, ok := session.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
		return
	}

	c.JSON(http.StatusOK, TokenStatus{
		IsAuthenticated: true,
		User: &SessionUser{
			ID:    claims.UserID,
			Email: claims.Email,
			Name:  claims.Name,
		},
	})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "auth-service",
	})
}

// validationMessage turns a binding error into a single user-facing sentence
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please include a %s", field)
	case "email":
		return "Please include a valid email"
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("Invalid %s", field)
	}
}
