package predictions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sportiify/internal/cache"
)

const arsenalRecord = `{"homeTeam":"Arsenal","awayTeam":"Chelsea","matchDate":"2026-03-01T15:00:00Z","competitionName":"Premier League","expectedOutcome":{"goals":{"home":2,"away":1},"corners":{"home":6,"away":null}},"analysis":"Arsenal strong at home"}`

func TestList_PaginationAndTotalPages(t *testing.T) {
	store := newFakeStore(samplePredictions()...)
	svc := NewService(store, cache.NewMemoryStore(), &fakePredictor{}, nil, discardLogger())

	resp, err := svc.List(context.Background(), ListParams{Page: 2, Limit: 3, Sort: SortDate})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.TotalCount != 4 || resp.TotalPages != 2 {
		t.Errorf("Expected 4 items over 2 pages, got %d over %d", resp.TotalCount, resp.TotalPages)
	}
	if len(resp.Predictions) != 1 || resp.Predictions[0].MID != "m3" {
		t.Errorf("Expected last page to hold m3, got %+v", resp.Predictions)
	}
}

func TestList_EmptyHasOnePage(t *testing.T) {
	svc := NewService(newFakeStore(), cache.NewMemoryStore(), &fakePredictor{}, nil, discardLogger())

	resp, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 10, Sort: SortDate})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.TotalPages != 1 {
		t.Errorf("Expected totalPages 1, got %d", resp.TotalPages)
	}
	if resp.Predictions == nil {
		t.Error("Expected empty slice, not nil, so it serializes as []")
	}
}

func TestList_FiltersAndSort(t *testing.T) {
	store := newFakeStore(samplePredictions()...)
	svc := NewService(store, cache.NewMemoryStore(), &fakePredictor{}, nil, discardLogger())
	day := mustDate("2026-03-01T00:00:00Z")

	tests := []struct {
		name   string
		params ListParams
		want   []string
	}{
		{"league", ListParams{Page: 1, Limit: 10, League: "Premier League", Sort: SortDate}, []string{"m1", "m3"}},
		{"team either side", ListParams{Page: 1, Limit: 10, Team: "arsenal", Sort: SortDate}, []string{"m1", "m3"}},
		{"date", ListParams{Page: 1, Limit: 10, Date: &day, Sort: SortDate}, []string{"m1", "m2"}},
		{"sort league", ListParams{Page: 1, Limit: 10, Sort: SortLeague}, []string{"m4", "m2", "m1", "m3"}},
		{"sort team", ListParams{Page: 1, Limit: 10, Sort: SortTeam}, []string{"m1", "m2", "m4", "m3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.List(context.Background(), tt.params)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var got []string
			for _, p := range resp.Predictions {
				got = append(got, p.MID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestList_UsesCache(t *testing.T) {
	store := newFakeStore(samplePredictions()...)
	svc := NewService(store, cache.NewMemoryStore(), &fakePredictor{}, nil, discardLogger())
	params := ListParams{Page: 1, Limit: 10, Sort: SortDate}

	svc.List(context.Background(), params)
	svc.List(context.Background(), params)

	if store.listCalls != 1 {
		t.Errorf("Expected second call to be served from cache, store called %d times", store.listCalls)
	}
}

func TestPredict_StoresAndInvalidatesListing(t *testing.T) {
	store := newFakeStore()
	predictor := &fakePredictor{records: map[string]string{"m1": arsenalRecord}}
	svc := NewService(store, cache.NewMemoryStore(), predictor, nil, discardLogger())
	ctx := context.Background()
	params := ListParams{Page: 1, Limit: 10, Sort: SortDate}

	before, _ := svc.List(ctx, params)
	if before.TotalCount != 0 {
		t.Fatalf("Expected empty listing, got %d", before.TotalCount)
	}

	raw, err := svc.Predict(ctx, "m1", MatchMeta{})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if string(raw) != arsenalRecord {
		t.Errorf("Expected record verbatim, got %s", raw)
	}

	after, _ := svc.List(ctx, params)
	if after.TotalCount != 1 {
		t.Fatalf("Expected stored prediction in listing, got %d", after.TotalCount)
	}
	got := after.Predictions[0]
	if got.HomeTeam != "Arsenal" || got.CompetitionName != "Premier League" {
		t.Errorf("Unexpected stored header %+v", got)
	}
	if !got.MatchDate.Equal(mustDate("2026-03-01T15:00:00Z")) {
		t.Errorf("Unexpected match date %v", got.MatchDate)
	}
	if string(got.Prediction) != arsenalRecord {
		t.Errorf("Expected stored payload unmodified, got %s", got.Prediction)
	}
}

// racingStore stores a prediction after the listing query has read the table,
// the way a concurrent Predict can
type racingStore struct {
	*fakeStore
	afterList func()
}

func (s *racingStore) List(ctx context.Context, params ListParams) ([]MatchPrediction, int64, error) {
	items, total, err := s.fakeStore.List(ctx, params)
	if s.afterList != nil {
		hook := s.afterList
		s.afterList = nil
		hook()
	}
	return items, total, err
}

func TestList_PageReadBeforeStoreIsNotServed(t *testing.T) {
	store := &racingStore{fakeStore: newFakeStore()}
	predictor := &fakePredictor{records: map[string]string{"m1": arsenalRecord}}
	svc := NewService(store, cache.NewMemoryStore(), predictor, nil, discardLogger())
	ctx := context.Background()
	params := ListParams{Page: 1, Limit: 10, Sort: SortDate}

	store.afterList = func() {
		if _, err := svc.Predict(ctx, "m1", MatchMeta{}); err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
	}

	stale, err := svc.List(ctx, params)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if stale.TotalCount != 0 {
		t.Fatalf("Expected the in-flight read to predate the store, got %d", stale.TotalCount)
	}

	fresh, err := svc.List(ctx, params)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if fresh.TotalCount != 1 {
		t.Errorf("Expected the stored prediction, got a stale page with %d items", fresh.TotalCount)
	}
}

func TestPredict_CachesUpstream(t *testing.T) {
	predictor := &fakePredictor{records: map[string]string{"m1": arsenalRecord}}
	svc := NewService(newFakeStore(), cache.NewMemoryStore(), predictor, nil, discardLogger())

	svc.Predict(context.Background(), "m1", MatchMeta{})
	svc.Predict(context.Background(), "m1", MatchMeta{})

	if predictor.calls != 1 {
		t.Errorf("Expected one upstream call, got %d", predictor.calls)
	}
}

func TestPredict_MetaFillsMissingFields(t *testing.T) {
	store := newFakeStore()
	predictor := &fakePredictor{records: map[string]string{"m9": `{"homeTeam":"Lyon","awayTeam":"Nice"}`}}
	svc := NewService(store, cache.NewMemoryStore(), predictor, nil, discardLogger())
	kickoff := mustDate("2026-04-04T19:00:00Z")

	if _, err := svc.Predict(context.Background(), "m9", MatchMeta{MatchDate: kickoff, CompetitionName: "Ligue 1"}); err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	rec, err := store.Get(context.Background(), "m9")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.CompetitionName != "Ligue 1" || !rec.MatchDate.Equal(kickoff) {
		t.Errorf("Expected meta to fill header, got %+v", rec)
	}
}

func TestPredict_StoreFailureStillReturnsPrediction(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("disk full")
	predictor := &fakePredictor{records: map[string]string{"m1": arsenalRecord}}
	svc := NewService(store, cache.NewMemoryStore(), predictor, nil, discardLogger())

	raw, err := svc.Predict(context.Background(), "m1", MatchMeta{})
	if err != nil || string(raw) != arsenalRecord {
		t.Errorf("Expected prediction despite store failure, got %s, %v", raw, err)
	}
}

func TestPredict_Errors(t *testing.T) {
	svc := NewService(newFakeStore(), cache.NewMemoryStore(), &fakePredictor{}, nil, discardLogger())
	if _, err := svc.Predict(context.Background(), "missing", MatchMeta{}); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("Expected ErrMatchNotFound, got %v", err)
	}

	down := &fakePredictor{err: ErrPredictorUnavailable}
	svc = NewService(newFakeStore(), cache.NewMemoryStore(), down, nil, discardLogger())
	if _, err := svc.Predict(context.Background(), "m1", MatchMeta{}); !errors.Is(err, ErrPredictorUnavailable) {
		t.Errorf("Expected ErrPredictorUnavailable, got %v", err)
	}
}

func TestNarration(t *testing.T) {
	rec := samplePredictions()[0]
	rec.Prediction = []byte(arsenalRecord)
	svc := NewService(newFakeStore(rec), nil, &fakePredictor{}, nil, discardLogger())

	text, err := svc.Narration(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Narration() error = %v", err)
	}
	if !strings.HasPrefix(text, "Arsenal versus Chelsea on 2026-03-01 15:00.") {
		t.Errorf("Unexpected narration %q", text)
	}

	if _, err := svc.Narration(context.Background(), "nope"); !errors.Is(err, ErrPredictionNotFound) {
		t.Errorf("Expected ErrPredictionNotFound, got %v", err)
	}
}

func TestVideo(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeStore(), nil, &fakePredictor{}, &fakeLinker{}, discardLogger())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	resp, err := svc.Video(ctx, "Serie A")
	if err != nil {
		t.Fatalf("Video() error = %v", err)
	}
	if resp.URL != "https://cdn.test/videos/serie-a.mp4?ttl=30m0s" {
		t.Errorf("Unexpected URL %q", resp.URL)
	}
	if !resp.ExpiresAt.Equal(fixed.Add(VideoTTL)) {
		t.Errorf("Unexpected expiry %v", resp.ExpiresAt)
	}

	if _, err := svc.Video(ctx, "Eredivisie"); !errors.Is(err, ErrUnknownCompetition) {
		t.Errorf("Expected ErrUnknownCompetition, got %v", err)
	}

	noStorage := NewService(newFakeStore(), nil, &fakePredictor{}, nil, discardLogger())
	if _, err := noStorage.Video(ctx, "LaLiga"); !errors.Is(err, ErrVideosUnavailable) {
		t.Errorf("Expected ErrVideosUnavailable, got %v", err)
	}

	broken := NewService(newFakeStore(), nil, &fakePredictor{}, &fakeLinker{err: errors.New("signing failed")}, discardLogger())
	if _, err := broken.Video(ctx, "LaLiga"); !errors.Is(err, ErrVideosUnavailable) {
		t.Errorf("Expected ErrVideosUnavailable on presign failure, got %v", err)
	}
}
