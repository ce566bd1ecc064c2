package sports

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for sports listings
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new sports handler
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Competitions handles GET /api/sports/:sport/competitions
func (h *Handler) Competitions(c *gin.Context) {
	var q CompetitionQuery
	for name, dst := range map[string]*int{"status": &q.Status, "per_page": &q.PerPage, "paged": &q.Paged} {
		v := c.Query(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": name + " must be a positive integer"})
			return
		}
		*dst = n
	}

	items, err := h.service.Competitions(c.Request.Context(), c.Param("sport"), q)
	h.respond(c, items, err)
}

// CompetitionMatches handles GET /api/sports/:sport/competitions/:cid/matches
func (h *Handler) CompetitionMatches(c *gin.Context) {
	from, ok := parseDay(c, "from")
	if !ok {
		return
	}
	to, ok := parseDay(c, "to")
	if !ok {
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "to must not be before from"})
		return
	}

	items, err := h.service.CompetitionMatches(c.Request.Context(), c.Param("sport"), c.Param("cid"), from, to)
	h.respond(c, items, err)
}

// Matches handles GET /api/sports/:sport/matches
func (h *Handler) Matches(c *gin.Context) {
	items, err := h.service.Matches(c.Request.Context(), c.Param("sport"))
	h.respond(c, items, err)
}

// Featured handles GET /api/sports/featured
func (h *Handler) Featured(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": Featured})
}

func parseDay(c *gin.Context, name string) (time.Time, bool) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return time.Time{}, true
	}
	day, err := time.Parse(DateLayout, v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": name + " must be formatted YYYY-MM-DD"})
		return time.Time{}, false
	}
	return day, true
}

func (h *Handler) respond(c *gin.Context, items []json.RawMessage, err error) {
	if err == nil {
		c.JSON(http.StatusOK, ItemsResponse{Items: items})
		return
	}

	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrUnknownSport):
		c.JSON(http.StatusNotFound, gin.H{"msg": "Unknown sport"})
	case errors.As(err, &upstream):
		h.logger.Warn("Sports provider rejected request", "sport", c.Param("sport"), "status", upstream.Status, "error", upstream.Message)
		c.JSON(http.StatusBadGateway, gin.H{"msg": upstream.Message})
	case errors.Is(err, ErrNetwork):
		h.logger.Warn("Sports provider unreachable", "sport", c.Param("sport"))
		c.JSON(http.StatusBadGateway, gin.H{"msg": MsgNetwork})
	default:
		h.logger.Error("Sports request failed", "sport", c.Param("sport"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
	}
}
