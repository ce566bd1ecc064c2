package session

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// TokenHeader carries the session token on every authenticated request
	TokenHeader = "x-auth-token"

	// Gin context keys set by AuthGate
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	EmailKey  = "email"

	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
)

// AuthGate rejects requests without a valid session token and exposes the
// decoded claims to downstream handlers and proxied services.
func AuthGate(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": msgNoToken})
			return
		}

		claims, err := v.Verify(token)
		if err != nil {
			slog.Warn("Rejected session token",
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"request_id", c.GetString("request_id"),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": msgInvalidToken})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)

		// Add headers for proxied requests
		c.Request.Header.Set("X-User-ID", claims.UserID)
		c.Request.Header.Set("X-User-Email", claims.Email)

		c.Next()
	}
}

// ClaimsFrom returns the claims AuthGate attached to the request
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
