// Package predictions serves stored match predictions and proxies new ones
// from the external prediction service.
package predictions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sportiify/internal/cache"

	"github.com/google/uuid"
)

// Cache lifetimes
const (
	ListCacheTTL  = 2 * time.Minute
	MatchCacheTTL = 30 * time.Minute
)

// Service handles business logic for predictions with caching
type Service struct {
	store     Store
	cache     cache.Store
	predictor Predictor
	videos    VideoLinker
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a predictions service. videos may be nil when storage is not configured.
func NewService(store Store, c cache.Store, predictor Predictor, videos VideoLinker, logger *slog.Logger) *Service {
	if c == nil {
		c = cache.NewMemoryStore()
	}
	return &Service{
		store:     store,
		cache:     c,
		predictor: predictor,
		videos:    videos,
		logger:    logger,
		now:       time.Now,
	}
}

// listVersionKey holds the generation of the cached listing. Storing a prediction
// replaces it, so a page read from the database before the write is cached under a
// generation no reader asks for anymore.
const listVersionKey = "predictions:list-version"

func listCacheKey(version string, p ListParams) string {
	date := ""
	if p.Date != nil {
		date = p.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("predictions:list:%s:page:%d:limit:%d:date:%s:league:%s:team:%s:sort:%s",
		version, p.Page, p.Limit, date, p.League, p.Team, p.Sort)
}

func (s *Service) listVersion(ctx context.Context) string {
	v, err := s.cache.Get(ctx, listVersionKey)
	if err != nil {
		return "0"
	}
	return string(v)
}

func matchCacheKey(matchID string) string {
	return "predictions:match:" + matchID
}

// List returns one page of stored predictions
func (s *Service) List(ctx context.Context, params ListParams) (*ListResponse, error) {
	key := listCacheKey(s.listVersion(ctx), params)

	var cached ListResponse
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		s.logger.Debug("Cache hit for predictions page", "page", params.Page)
		return &cached, nil
	}

	items, totalCount, err := s.store.List(ctx, params)
	if err != nil {
		return nil, err
	}

	totalPages := int(totalCount) / params.Limit
	if int(totalCount)%params.Limit != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}

	resp := &ListResponse{
		Predictions: items,
		Page:        params.Page,
		Limit:       params.Limit,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
	}

	if err := cache.SetJSON(ctx, s.cache, key, resp, ListCacheTTL); err != nil {
		s.logger.Warn("Failed to cache predictions page", "error", err)
	}

	return resp, nil
}

// Predict returns the prediction record for a match exactly as the prediction
// service produced it and stores it so it shows up in the listing.
func (s *Service) Predict(ctx context.Context, matchID string, meta MatchMeta) ([]byte, error) {
	key := matchCacheKey(matchID)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		return raw, nil
	}

	raw, err := s.predictor.Predict(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, raw, MatchCacheTTL); err != nil {
		s.logger.Warn("Failed to cache prediction", "match_id", matchID, "error", err)
	}

	if err := s.save(ctx, matchID, raw, meta); err != nil {
		// The caller still gets the prediction; only the listing misses it
		s.logger.Error("Failed to store prediction", "match_id", matchID, "error", err)
	}

	return raw, nil
}

func (s *Service) save(ctx context.Context, matchID string, raw []byte, meta MatchMeta) error {
	var hdr predictionHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return fmt.Errorf("decode prediction header: %w", err)
	}

	rec := &MatchPrediction{
		MID:             matchID,
		HomeTeam:        hdr.HomeTeam,
		AwayTeam:        hdr.AwayTeam,
		CompetitionName: hdr.CompetitionName,
		Prediction:      json.RawMessage(raw),
	}
	if rec.CompetitionName == "" {
		rec.CompetitionName = meta.CompetitionName
	}
	if t, ok := parseMatchDate(hdr.MatchDate); ok {
		rec.MatchDate = t
	} else if !meta.MatchDate.IsZero() {
		rec.MatchDate = meta.MatchDate.UTC()
	} else {
		rec.MatchDate = s.now().UTC()
	}

	if err := s.store.Upsert(ctx, rec); err != nil {
		return err
	}

	if err := s.cache.Set(ctx, listVersionKey, []byte(uuid.NewString()), 0); err != nil {
		s.logger.Warn("Failed to bump predictions listing version", "error", err)
	}
	if err := s.cache.DeletePattern(ctx, "predictions:list:*"); err != nil {
		s.logger.Warn("Failed to invalidate predictions pages", "error", err)
	}
	return nil
}

// Narration returns the read-aloud text of a stored prediction
func (s *Service) Narration(ctx context.Context, matchID string) (string, error) {
	rec, err := s.store.Get(ctx, matchID)
	if err != nil {
		return "", err
	}
	return Narrate(rec)
}

// Video returns a presigned link to the competition's highlight video
func (s *Service) Video(ctx context.Context, competition string) (*VideoResponse, error) {
	key, ok := VideoKey(competition)
	if !ok {
		return nil, ErrUnknownCompetition
	}
	if s.videos == nil {
		return nil, ErrVideosUnavailable
	}

	u, err := s.videos.PresignDownload(ctx, key, VideoTTL)
	if err != nil {
		return nil, errors.Join(ErrVideosUnavailable, err)
	}

	return &VideoResponse{
		Competition: competition,
		URL:         u,
		ExpiresAt:   s.now().Add(VideoTTL).UTC(),
	}, nil
}
