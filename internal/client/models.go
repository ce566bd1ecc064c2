package client

import (
	"encoding/json"
	"time"
)

// User is the account returned by register and login
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is the body of a successful register or login
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user,omitempty"`
}

// SessionUser is the identity carried by a valid token
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// TokenStatus is the body of check-token
type TokenStatus struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *SessionUser `json:"user,omitempty"`
}

// Prediction is one stored match prediction. The payload is kept as received.
type Prediction struct {
	MID             string          `json:"mid"`
	HomeTeam        string          `json:"homeTeam"`
	AwayTeam        string          `json:"awayTeam"`
	MatchDate       time.Time       `json:"matchDate"`
	CompetitionName string          `json:"competitionName"`
	Prediction      json.RawMessage `json:"prediction"`
}

// PredictionsPage is one page of GET /match-predictions
type PredictionsPage struct {
	Predictions []Prediction `json:"predictions"`
	Page        int          `json:"page"`
	Limit       int          `json:"limit"`
	TotalCount  int64        `json:"totalCount"`
	TotalPages  int          `json:"totalPages"`
}

// ListParams selects a page of predictions. Empty filters are not sent.
type ListParams struct {
	Page   int
	Limit  int
	Date   string
	League string
	Team   string
	Sort   string
}

// Narration is the spoken summary of a prediction
type Narration struct {
	MID  string `json:"mid"`
	Text string `json:"text"`
}

// Video is a time-limited competition highlight link
type Video struct {
	Competition string    `json:"competition"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Competition is a sports-data competition
type Competition struct {
	CID   json.Number `json:"cid"`
	CName string      `json:"cname"`
}

// Team is one side of a match
type Team struct {
	TName string `json:"tname"`
	Abbr  string `json:"abbr,omitempty"`
	Logo  string `json:"logo,omitempty"`
}

// Match is a sports-data fixture
type Match struct {
	MID   json.Number `json:"mid"`
	Teams struct {
		Home Team `json:"home"`
		Away Team `json:"away"`
	} `json:"teams"`
	DateStart   string `json:"datestart"`
	Competition struct {
		CID   json.Number `json:"cid"`
		CName string      `json:"cname"`
	} `json:"competition"`
}
