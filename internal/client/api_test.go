package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestAPI_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] == "fan@example.com" && body["password"] == "secret1" {
			w.Write([]byte(`{"token":"tok","user":{"id":"u1","email":"fan@example.com","name":"Fan"}}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"msg":"Invalid credentials"}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL + "/")

	resp, err := api.Login(context.Background(), "fan@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token != "tok" || resp.User.ID != "u1" {
		t.Errorf("Unexpected response %+v", resp)
	}

	_, err = api.Login(context.Background(), "fan@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Msg != "Invalid credentials" {
		t.Errorf("Unexpected error %+v", apiErr)
	}
}

func TestAPI_CheckTokenSendsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(TokenHeader) != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"msg":"Token is not valid"}`))
			return
		}
		w.Write([]byte(`{"isAuthenticated":true,"user":{"id":"u1","email":"fan@example.com"}}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL)
	status, err := api.CheckToken(context.Background(), "tok")
	if err != nil || !status.IsAuthenticated {
		t.Errorf("CheckToken() = %+v, %v", status, err)
	}

	_, err = api.CheckToken(context.Background(), "bad")
	if StatusOf(err) != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %v", err)
	}
}

func TestAPI_ListPredictionsOmitsEmptyFilters(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"predictions":[{"mid":"m1","homeTeam":"Arsenal","awayTeam":"Chelsea","prediction":{"analysis":"x"}}],"page":2,"limit":10,"totalCount":11,"totalPages":2}`))
	}))
	defer srv.Close()

	page, err := NewAPI(srv.URL).ListPredictions(context.Background(), ListParams{Page: 2, Limit: 10, League: "Premier League"})
	if err != nil {
		t.Fatalf("ListPredictions() error = %v", err)
	}

	if got.Get("page") != "2" || got.Get("limit") != "10" || got.Get("league") != "Premier League" {
		t.Errorf("Unexpected query %v", got)
	}
	for _, k := range []string{"date", "team", "sort"} {
		if got.Has(k) {
			t.Errorf("Expected empty %s to be omitted", k)
		}
	}
	if page.TotalPages != 2 || string(page.Predictions[0].Prediction) != `{"analysis":"x"}` {
		t.Errorf("Unexpected page %+v", page)
	}
}

func TestAPI_ErrorMessageField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"Network error: Unable to reach the server."}`))
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL).Matches(context.Background(), "soccer")
	if err == nil || err.Error() != "Network error: Unable to reach the server." {
		t.Errorf("Expected message passthrough, got %v", err)
	}
}

func TestAPI_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewAPI(base).Competitions(context.Background(), "soccer")
	if err == nil {
		t.Fatal("Expected error")
	}
	if StatusOf(err) != 0 {
		t.Errorf("Expected transport error, got status %d", StatusOf(err))
	}
}
