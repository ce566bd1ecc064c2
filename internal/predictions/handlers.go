package predictions

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for predictions
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new predictions handler
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// ParseListParams validates the listing query string
func ParseListParams(c *gin.Context) (ListParams, error) {
	params := ListParams{
		Page:   1,
		Limit:  DefaultLimit,
		League: strings.TrimSpace(c.Query("league")),
		Team:   strings.TrimSpace(c.Query("team")),
		Sort:   SortDate,
	}

	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, fmt.Errorf("page must be a positive integer")
		}
		params.Page = page
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > MaxLimit {
			return params, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
		}
		params.Limit = limit
	}

	if v := strings.TrimSpace(c.Query("date")); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			return params, fmt.Errorf("date must be formatted YYYY-MM-DD")
		}
		params.Date = &day
	}

	if v := strings.TrimSpace(c.Query("sort")); v != "" {
		switch v {
		case SortDate, SortLeague, SortTeam:
			params.Sort = v
		default:
			return params, fmt.Errorf("sort must be one of date, league, team")
		}
	}

	return params, nil
}

// ListPredictions handles GET /match-predictions
func (h *Handler) ListPredictions(c *gin.Context) {
	params, err := ParseListParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	resp, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("Failed to list predictions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PredictMatch handles GET /predict-match-outcome/:matchId
func (h *Handler) PredictMatch(c *gin.Context) {
	matchID := strings.TrimSpace(c.Param("matchId"))
	if matchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Match ID is required"})
		return
	}

	meta := MatchMeta{CompetitionName: c.Query("competition")}
	if t, ok := parseMatchDate(c.Query("date")); ok {
		meta.MatchDate = t
	}

	raw, err := h.service.Predict(c.Request.Context(), matchID, meta)
	if err != nil {
		switch {
		case errors.Is(err, ErrMatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{"msg": "Match not found"})
		default:
			h.logger.Error("Prediction service failed", "match_id", matchID, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"msg": "Failed to fetch match prediction"})
		}
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// Narration handles GET /match-predictions/:matchId/narration
func (h *Handler) Narration(c *gin.Context) {
	matchID := c.Param("matchId")

	text, err := h.service.Narration(c.Request.Context(), matchID)
	if err != nil {
		if errors.Is(err, ErrPredictionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Prediction not found"})
			return
		}
		h.logger.Error("Failed to narrate prediction", "match_id", matchID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mid": matchID, "text": text})
}

// Video handles GET /videos/:competition
func (h *Handler) Video(c *gin.Context) {
	competition := c.Param("competition")

	resp, err := h.service.Video(c.Request.Context(), competition)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownCompetition):
			c.JSON(http.StatusNotFound, gin.H{"msg": "No video for competition " + competition})
		case errors.Is(err, ErrVideosUnavailable):
			h.logger.Warn("Video storage unavailable", "competition", competition, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"msg": "Videos are unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
