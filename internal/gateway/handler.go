package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"sportiify/internal/consul"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ProxyHandler handles reverse proxy requests to backend services
type ProxyHandler struct {
	discovery consul.ServiceDiscovery
	transport http.RoundTripper
	logger    *slog.Logger
}

// NewProxyHandler creates a new proxy handler
func NewProxyHandler(discovery consul.ServiceDiscovery, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		discovery: discovery,
		transport: otelhttp.NewTransport(http.DefaultTransport),
		logger:    logger,
	}
}

// Proxy forwards the request unchanged to a healthy instance of serviceName
func (h *ProxyHandler) Proxy(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("upstream_service", serviceName)

		instance, err := h.discovery.DiscoverOne(serviceName)
		if err != nil {
			h.logger.Error("Failed to discover service", "service", serviceName, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"msg": fmt.Sprintf("Service %s unavailable", serviceName),
			})
			return
		}

		targetURL, err := url.Parse(instance.URL())
		if err != nil {
			h.logger.Error("Invalid upstream address", "service", serviceName, "address", instance.URL(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
			return
		}

		requestID := c.GetString(RequestIDKey)
		proxy := &httputil.ReverseProxy{
			Rewrite: func(r *httputil.ProxyRequest) {
				r.SetURL(targetURL)
				r.SetXForwarded()
				if requestID != "" {
					r.Out.Header.Set(RequestIDHeader, requestID)
				}
			},
			Transport: h.transport,
			ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
				h.logger.Error("Proxy error", "service", serviceName, "path", r.URL.Path, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(`{"msg":"Bad gateway"}`))
			},
		}

		h.logger.Debug("Proxying request", "method", c.Request.Method, "path", c.Request.URL.Path, "upstream", targetURL.Host)
		proxy.ServeHTTP(c.Writer, c.Request)
	}
}

// Health is the gateway health check handler
func (h *ProxyHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "api-gateway",
	})
}
