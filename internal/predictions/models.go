package predictions

import (
	"encoding/json"
	"time"
)

// Sort orders accepted by the listing
const (
	SortDate   = "date"
	SortLeague = "league"
	SortTeam   = "team"
)

// Listing defaults and bounds
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// MatchPrediction is a stored prediction for one match
type MatchPrediction struct {
	MID             string          `json:"mid"`
	HomeTeam        string          `json:"homeTeam"`
	AwayTeam        string          `json:"awayTeam"`
	MatchDate       time.Time       `json:"matchDate"`
	CompetitionName string          `json:"competitionName"`
	Prediction      json.RawMessage `json:"prediction"`
}

// Prediction is the structured view of a prediction payload
type Prediction struct {
	ExpectedOutcome           *ExpectedOutcome       `json:"expectedOutcome,omitempty"`
	KeyPlayers                *KeyPlayers            `json:"keyPlayers,omitempty"`
	SameGameParlaySuggestions []string               `json:"sameGameParlaySuggestions,omitempty"`
	AdditionalPredictions     *AdditionalPredictions `json:"additionalPredictions,omitempty"`
	Analysis                  string                 `json:"analysis,omitempty"`
	KeyFactors                []string               `json:"keyFactors,omitempty"`
	BettingTips               []string               `json:"bettingTips,omitempty"`
}

// ExpectedOutcome holds expected goals and corners per side
type ExpectedOutcome struct {
	Goals   Pair `json:"goals"`
	Corners Pair `json:"corners"`
}

// Pair is a home/away figure; either side may be unknown
type Pair struct {
	Home *float64 `json:"home"`
	Away *float64 `json:"away"`
}

// KeyPlayers lists the players to watch per side
type KeyPlayers struct {
	Home []string `json:"home"`
	Away []string `json:"away"`
}

// AdditionalPredictions holds the secondary markets
type AdditionalPredictions struct {
	TotalGoalsOverUnder          OverUnder `json:"totalGoalsOverUnder"`
	MostProbableSingleBetOutcome string    `json:"mostProbableSingleBetOutcome"`
}

// OverUnder is the goals line per half
type OverUnder struct {
	FirstHalf  string `json:"firstHalf"`
	SecondHalf string `json:"secondHalf"`
}

// ListParams are the listing filters after validation
type ListParams struct {
	Page   int
	Limit  int
	Date   *time.Time
	League string
	Team   string
	Sort   string
}

// Offset is the number of rows skipped before the page
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ListResponse is one page of predictions
type ListResponse struct {
	Predictions []MatchPrediction `json:"predictions"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
	TotalCount  int64             `json:"totalCount"`
	TotalPages  int               `json:"totalPages"`
}

// MatchMeta describes the match a prediction is fetched for.
// Fields the prediction service leaves out are filled from here.
type MatchMeta struct {
	MatchDate       time.Time
	CompetitionName string
}

// VideoResponse points at a competition highlight video
type VideoResponse struct {
	Competition string    `json:"competition"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
