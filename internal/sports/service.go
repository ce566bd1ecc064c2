// Package sports proxies the third-party soccer, NFL and basketball data APIs
// with a short-lived cache in front of them.
package sports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"time"

	"sportiify/internal/cache"
)

// DateLayout is the day format used in date ranges
const DateLayout = "2006-01-02"

// ErrUnknownSport is returned for a sport with no enabled provider
var ErrUnknownSport = errors.New("unknown sport")

// Fetcher returns the items of a provider listing
type Fetcher interface {
	Items(ctx context.Context, path string, query url.Values) ([]json.RawMessage, error)
	Provider() Provider
}

// CompetitionQuery overrides the provider's default competition listing shape. Zero means default.
type CompetitionQuery struct {
	Status  int
	PerPage int
	Paged   int
}

// Service serves cached sports listings
type Service struct {
	fetchers map[string]Fetcher
	cache    cache.Store
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a sports service over one fetcher per sport
func NewService(fetchers map[string]Fetcher, c cache.Store, ttl time.Duration, logger *slog.Logger) *Service {
	if c == nil {
		c = cache.NewMemoryStore()
	}
	return &Service{
		fetchers: fetchers,
		cache:    c,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// NewServiceFromConfig builds HTTP clients for every enabled provider
func NewServiceFromConfig(cfg *Config, c cache.Store, logger *slog.Logger) *Service {
	fetchers := make(map[string]Fetcher)
	for sport, p := range cfg.Providers() {
		fetchers[sport] = NewClient(p, cfg.HTTPTimeout)
	}
	return NewService(fetchers, c, cfg.CacheTTL, logger)
}

// Sports returns the enabled sports in name order
func (s *Service) Sports() []string {
	out := make([]string, 0, len(s.fetchers))
	for sport := range s.fetchers {
		out = append(out, sport)
	}
	sort.Strings(out)
	return out
}

func (s *Service) fetcher(sport string) (Fetcher, error) {
	f, ok := s.fetchers[sport]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSport, sport)
	}
	return f, nil
}

// Competitions lists a sport's competitions
func (s *Service) Competitions(ctx context.Context, sport string, q CompetitionQuery) ([]json.RawMessage, error) {
	f, err := s.fetcher(sport)
	if err != nil {
		return nil, err
	}
	return s.cached(ctx, f, "/competitions", competitionValues(f.Provider(), q), false)
}

// CompetitionMatches lists the matches of one competition in [from, to].
// Zero bounds fall back to the provider's default window around now.
func (s *Service) CompetitionMatches(ctx context.Context, sport, cid string, from, to time.Time) ([]json.RawMessage, error) {
	f, err := s.fetcher(sport)
	if err != nil {
		return nil, err
	}
	p := f.Provider()

	q := url.Values{}
	q.Set("status", strconv.Itoa(p.MatchStatus))
	if p.MatchesPerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.MatchesPerPage))
	}
	if p.PreSquad {
		q.Set("pre_squad", "true")
	}
	if p.Timezone != "" {
		q.Set("timezone", p.Timezone)
	}

	if from.IsZero() && to.IsZero() && p.WindowMonths > 0 {
		now := s.now()
		from = now.AddDate(0, -p.WindowMonths, 0)
		to = now.AddDate(0, p.WindowMonths, 0)
	}
	if !from.IsZero() || !to.IsZero() {
		if from.IsZero() {
			from = to
		}
		if to.IsZero() {
			to = from
		}
		q.Set("date", from.Format(DateLayout)+"_"+to.Format(DateLayout))
	}

	return s.cached(ctx, f, "/competition/"+url.PathEscape(cid)+"/matches", q, false)
}

// Matches lists the sport's current matches across competitions
func (s *Service) Matches(ctx context.Context, sport string) ([]json.RawMessage, error) {
	f, err := s.fetcher(sport)
	if err != nil {
		return nil, err
	}
	p := f.Provider()

	q := url.Values{}
	q.Set("status", strconv.Itoa(p.MatchStatus))
	if p.DayMatchesPerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.DayMatchesPerPage))
	}
	if p.PreSquad {
		q.Set("pre_squad", "true")
	}
	return s.cached(ctx, f, "/matches", q, false)
}

// Warm refreshes the default competition listing of every sport
func (s *Service) Warm(ctx context.Context) {
	for _, sport := range s.Sports() {
		f := s.fetchers[sport]
		items, err := s.cached(ctx, f, "/competitions", competitionValues(f.Provider(), CompetitionQuery{}), true)
		if err != nil {
			s.logger.Warn("Failed to warm competitions", "sport", sport, "error", err)
			continue
		}
		s.logger.Debug("Warmed competitions", "sport", sport, "count", len(items))
	}
}

func competitionValues(p Provider, q CompetitionQuery) url.Values {
	status, perPage, paged := p.CompetitionStatus, p.CompetitionsPerPage, 1
	if q.Status > 0 {
		status = q.Status
	}
	if q.PerPage > 0 {
		perPage = q.PerPage
	}
	if q.Paged > 0 {
		paged = q.Paged
	}

	v := url.Values{}
	v.Set("status", strconv.Itoa(status))
	v.Set("per_page", strconv.Itoa(perPage))
	v.Set("paged", strconv.Itoa(paged))
	return v
}

func cacheKey(f Fetcher, path string, q url.Values) string {
	return "sports:" + f.Provider().BaseURL + path + "?" + q.Encode()
}

// cached serves path from the cache unless refresh is set, filling it on a miss.
// Failed upstream calls are never cached.
func (s *Service) cached(ctx context.Context, f Fetcher, path string, q url.Values, refresh bool) ([]json.RawMessage, error) {
	key := cacheKey(f, path, q)

	if !refresh {
		var items []json.RawMessage
		if err := cache.GetJSON(ctx, s.cache, key, &items); err == nil {
			return items, nil
		}
	}

	items, err := f.Items(ctx, path, q)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, items, s.ttl); err != nil {
		s.logger.Warn("Failed to cache sports listing", "path", path, "error", err)
	}
	return items, nil
}
