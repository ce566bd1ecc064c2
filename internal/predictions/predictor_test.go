package predictions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPPredictor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/predict-match-outcome/m1":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(arsenalRecord))
		case "/predict-match-outcome/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/predict-match-outcome/html":
			w.Write([]byte("<html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL+"/", 2*time.Second)
	ctx := context.Background()

	raw, err := p.Predict(ctx, "m1")
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if string(raw) != arsenalRecord {
		t.Errorf("Expected body verbatim, got %s", raw)
	}

	if _, err := p.Predict(ctx, "unknown"); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("Expected ErrMatchNotFound, got %v", err)
	}
	if _, err := p.Predict(ctx, "broken"); !errors.Is(err, ErrPredictorUnavailable) {
		t.Errorf("Expected ErrPredictorUnavailable on 500, got %v", err)
	}
	if _, err := p.Predict(ctx, "html"); !errors.Is(err, ErrPredictorUnavailable) {
		t.Errorf("Expected ErrPredictorUnavailable on non-JSON body, got %v", err)
	}
}

func TestHTTPPredictor_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewHTTPPredictor(url, time.Second)
	if _, err := p.Predict(context.Background(), "m1"); !errors.Is(err, ErrPredictorUnavailable) {
		t.Errorf("Expected ErrPredictorUnavailable, got %v", err)
	}
}

func TestParseMatchDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2026-03-01T15:00:00Z", time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC), true},
		{"2026-03-01T20:30:00+05:30", time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC), true},
		{"2026-03-01 15:00:00", time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC), true},
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"tomorrow", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := parseMatchDate(tt.in)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("parseMatchDate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
