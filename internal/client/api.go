// Package client is the Go client for the Sportiify API: a typed HTTP client,
// the session state of a signed-in user and the predictions list query.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenHeader carries the session token on gated requests
const TokenHeader = "x-auth-token"

// APIError is a non-2xx response. Msg is the server's msg or message field.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Msg
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// API is an HTTP client for the gateway
type API struct {
	baseURL string
	http    *http.Client
}

// Option configures an API client
type Option func(*API)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(a *API) {
		a.http = c
	}
}

// NewAPI creates a client for the gateway at baseURL
func NewAPI(baseURL string, opts ...Option) *API {
	a := &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register creates an account
func (a *API) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/api/auth/register", nil, "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a token
func (a *API) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/api/auth/login", nil, "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckToken asks the server whether token is still valid
func (a *API) CheckToken(ctx context.Context, token string) (*TokenStatus, error) {
	var resp TokenStatus
	if err := a.do(ctx, http.MethodGet, "/api/auth/check-token", nil, token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPredictions fetches one page of stored predictions
func (a *API) ListPredictions(ctx context.Context, p ListParams) (*PredictionsPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	for k, v := range map[string]string{"date": p.Date, "league": p.League, "team": p.Team, "sort": p.Sort} {
		if v != "" {
			q.Set(k, v)
		}
	}

	var resp PredictionsPage
	if err := a.do(ctx, http.MethodGet, "/match-predictions", q, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PredictMatch fetches the prediction for a match. The record is returned as received.
func (a *API) PredictMatch(ctx context.Context, token, matchID string, competition, date string) (json.RawMessage, error) {
	q := url.Values{}
	if competition != "" {
		q.Set("competition", competition)
	}
	if date != "" {
		q.Set("date", date)
	}

	var resp json.RawMessage
	if err := a.do(ctx, http.MethodGet, "/predict-match-outcome/"+url.PathEscape(matchID), q, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Narration fetches the narration text of a stored prediction
func (a *API) Narration(ctx context.Context, matchID string) (*Narration, error) {
	var resp Narration
	if err := a.do(ctx, http.MethodGet, "/match-predictions/"+url.PathEscape(matchID)+"/narration", nil, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Video fetches the highlight link of a competition
func (a *API) Video(ctx context.Context, competition string) (*Video, error) {
	var resp Video
	if err := a.do(ctx, http.MethodGet, "/videos/"+url.PathEscape(competition), nil, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Competitions lists a sport's competitions
func (a *API) Competitions(ctx context.Context, sport string) ([]Competition, error) {
	var resp struct {
		Items []Competition `json:"items"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/sports/"+url.PathEscape(sport)+"/competitions", nil, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// CompetitionMatches lists a competition's matches; from and to are YYYY-MM-DD or empty
func (a *API) CompetitionMatches(ctx context.Context, sport, cid, from, to string) ([]Match, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}

	var resp struct {
		Items []Match `json:"items"`
	}
	path := "/api/sports/" + url.PathEscape(sport) + "/competitions/" + url.PathEscape(cid) + "/matches"
	if err := a.do(ctx, http.MethodGet, path, q, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Matches lists a sport's current matches
func (a *API) Matches(ctx context.Context, sport string) ([]Match, error) {
	var resp struct {
		Items []Match `json:"items"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/sports/"+url.PathEscape(sport)+"/matches", nil, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (a *API) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	endpoint := a.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var e struct {
			Msg     string `json:"msg"`
			Message string `json:"message"`
		}
		json.Unmarshal(data, &e)
		msg := e.Msg
		if msg == "" {
			msg = e.Message
		}
		return &APIError{Status: resp.StatusCode, Msg: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
