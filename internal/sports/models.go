package sports

import "encoding/json"

// Competition is the subset of an upstream competition item the service reads.
// Items are otherwise relayed unmodified.
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

// Match is the subset of an upstream match item the service reads
type Match struct {
	MID   json.Number `json:"mid"`
	Teams struct {
		Home Team `json:"home"`
		Away Team `json:"away"`
	} `json:"teams"`
	DateStart   string `json:"datestart"`
	Competition struct {
		CName string `json:"cname"`
	} `json:"competition"`
}

// ItemsResponse is the body returned for every sports listing
type ItemsResponse struct {
	Items []json.RawMessage `json:"items"`
}

// envelope is the upstream response shape: {"response": {"items": [...]}}
type envelope struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Response struct {
		Items json.RawMessage `json:"items"`
	} `json:"response"`
}

// FeaturedCompetition is a soccer competition shown on the landing page
type FeaturedCompetition struct {
	CID   int    `json:"cid"`
	CName string `json:"cname"`
}

// Featured lists the featured soccer competitions
var Featured = []FeaturedCompetition{
	{CID: 1176, CName: "Bundesliga"},
	{CID: 1172, CName: "Serie A"},
	{CID: 1119, CName: "Ligue 1"},
	{CID: 1118, CName: "Premier League"},
	{CID: 1120, CName: "LaLiga"},
	{CID: 1067, CName: "MLS"},
	{CID: 1128, CName: "UEFA Champions League"},
}
