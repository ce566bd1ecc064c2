package predictions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	// ErrMatchNotFound is returned when the prediction service knows no such match
	ErrMatchNotFound = errors.New("match not found")
	// ErrPredictorUnavailable is returned when the prediction service cannot answer
	ErrPredictorUnavailable = errors.New("prediction service unavailable")
)

// Predictor fetches the prediction for a match from the external prediction service.
// The returned bytes are the service's JSON record, unmodified.
type Predictor interface {
	Predict(ctx context.Context, matchID string) ([]byte, error)
}

// HTTPPredictor calls GET {base}/predict-match-outcome/{matchId}
type HTTPPredictor struct {
	baseURL string
	client  *http.Client
}

// NewHTTPPredictor creates a predictor client for baseURL
func NewHTTPPredictor(baseURL string, timeout time.Duration) *HTTPPredictor {
	return &HTTPPredictor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Predict fetches and returns the raw prediction record
func (p *HTTPPredictor) Predict(ctx context.Context, matchID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/predict-match-outcome/%s", p.baseURL, url.PathEscape(matchID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build predictor request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrPredictorUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrMatchNotFound
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", ErrPredictorUnavailable, resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not JSON", ErrPredictorUnavailable)
	}
	return body, nil
}

// predictionHeader is the part of the prediction record used for indexing
type predictionHeader struct {
	MID             string `json:"mid"`
	HomeTeam        string `json:"homeTeam"`
	AwayTeam        string `json:"awayTeam"`
	MatchDate       string `json:"matchDate"`
	CompetitionName string `json:"competitionName"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseMatchDate accepts the date formats seen from the prediction and sports APIs
func parseMatchDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
