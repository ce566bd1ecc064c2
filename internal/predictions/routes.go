package predictions

import (
	"net/http"

	"sportiify/internal/config"
	"sportiify/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RegisterRoutes builds the HTTP handler of the predictions service
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins: config.AllowedOrigins(),
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Accept", "Content-Type", session.TokenHeader},
	}))

	mountRoutes(r, s.handler, s.tokens)
	r.GET("/health", s.Health)

	return otelhttp.NewHandler(r, "predictions-service")
}

func mountRoutes(r gin.IRouter, h *Handler, tokens session.Verifier) {
	list := r.Group("/match-predictions")
	{
		list.GET("", h.ListPredictions)              // GET /match-predictions?page=1&limit=10&date=&league=&team=&sort=date
		list.GET("/:matchId/narration", h.Narration) // GET /match-predictions/:matchId/narration
	}

	r.GET("/predict-match-outcome/:matchId", session.AuthGate(tokens), h.PredictMatch)
	r.GET("/videos/:competition", h.Video)
}
