package predictions

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Narrate renders the read-aloud text of a stored prediction
func Narrate(mp *MatchPrediction) (string, error) {
	var p Prediction
	if len(mp.Prediction) > 0 {
		if err := json.Unmarshal(mp.Prediction, &p); err != nil {
			return "", fmt.Errorf("decode prediction %s: %w", mp.MID, err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s versus %s on %s. ", mp.HomeTeam, mp.AwayTeam, mp.MatchDate.UTC().Format("2006-01-02 15:04"))

	if eo := p.ExpectedOutcome; eo != nil {
		fmt.Fprintf(&b, "Expected Outcome: Goals - %s %s, %s %s. ",
			mp.HomeTeam, figure(eo.Goals.Home), mp.AwayTeam, figure(eo.Goals.Away))
		fmt.Fprintf(&b, "Corners - %s %s, %s %s. ",
			mp.HomeTeam, figure(eo.Corners.Home), mp.AwayTeam, figure(eo.Corners.Away))
	}
	if p.Analysis != "" {
		fmt.Fprintf(&b, "Analysis: %s. ", p.Analysis)
	}
	if len(p.KeyFactors) > 0 {
		fmt.Fprintf(&b, "Key Factors: %s. ", strings.Join(p.KeyFactors, ". "))
	}
	if len(p.BettingTips) > 0 {
		fmt.Fprintf(&b, "Betting Tips: %s. ", strings.Join(p.BettingTips, ". "))
	}
	if len(p.SameGameParlaySuggestions) > 0 {
		fmt.Fprintf(&b, "Same Game Parlay Suggestions: %s. ", strings.Join(p.SameGameParlaySuggestions, ". "))
	}

	return strings.TrimSpace(b.String()), nil
}

func figure(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
