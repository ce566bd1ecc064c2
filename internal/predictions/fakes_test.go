package predictions

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore keeps predictions in memory and applies the listing filters
type fakeStore struct {
	mu        sync.Mutex
	items     map[string]MatchPrediction
	listCalls int
	err       error
}

func newFakeStore(items ...MatchPrediction) *fakeStore {
	s := &fakeStore{items: make(map[string]MatchPrediction)}
	for _, it := range items {
		s.items[it.MID] = it
	}
	return s
}

func (s *fakeStore) Upsert(ctx context.Context, p *MatchPrediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.items[p.MID] = *p
	return nil
}

func (s *fakeStore) Get(ctx context.Context, mid string) (*MatchPrediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[mid]
	if !ok {
		return nil, ErrPredictionNotFound
	}
	return &p, nil
}

func (s *fakeStore) List(ctx context.Context, params ListParams) ([]MatchPrediction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, 0, s.err
	}

	var matched []MatchPrediction
	for _, p := range s.items {
		if params.Date != nil && p.MatchDate.Format("2006-01-02") != params.Date.Format("2006-01-02") {
			continue
		}
		if params.League != "" && p.CompetitionName != params.League {
			continue
		}
		if params.Team != "" {
			team := strings.ToLower(params.Team)
			if !strings.Contains(strings.ToLower(p.HomeTeam), team) && !strings.Contains(strings.ToLower(p.AwayTeam), team) {
				continue
			}
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch params.Sort {
		case SortLeague:
			if a.CompetitionName != b.CompetitionName {
				return a.CompetitionName < b.CompetitionName
			}
		case SortTeam:
			if a.HomeTeam != b.HomeTeam {
				return a.HomeTeam < b.HomeTeam
			}
		}
		if !a.MatchDate.Equal(b.MatchDate) {
			return a.MatchDate.Before(b.MatchDate)
		}
		return a.MID < b.MID
	})

	total := int64(len(matched))
	start := params.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]MatchPrediction{}, matched[start:end]...), total, nil
}

// fakePredictor returns canned records per match ID
type fakePredictor struct {
	mu      sync.Mutex
	records map[string]string
	err     error
	calls   int
}

func (f *fakePredictor) Predict(ctx context.Context, matchID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return []byte(rec), nil
}

// fakeLinker presigns deterministic URLs
type fakeLinker struct {
	err error
}

func (f *fakeLinker) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.test/" + key + "?ttl=" + ttl.String(), nil
}

func mustDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func samplePredictions() []MatchPrediction {
	return []MatchPrediction{
		{MID: "m1", HomeTeam: "Arsenal", AwayTeam: "Chelsea", MatchDate: mustDate("2026-03-01T15:00:00Z"), CompetitionName: "Premier League", Prediction: []byte(`{}`)},
		{MID: "m2", HomeTeam: "Barcelona", AwayTeam: "Sevilla", MatchDate: mustDate("2026-03-01T20:00:00Z"), CompetitionName: "LaLiga", Prediction: []byte(`{}`)},
		{MID: "m3", HomeTeam: "Liverpool", AwayTeam: "Arsenal", MatchDate: mustDate("2026-03-02T16:30:00Z"), CompetitionName: "Premier League", Prediction: []byte(`{}`)},
		{MID: "m4", HomeTeam: "Bayern", AwayTeam: "Dortmund", MatchDate: mustDate("2026-02-28T17:30:00Z"), CompetitionName: "Bundesliga", Prediction: []byte(`{}`)},
	}
}
