package predictions

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnknownCompetition is returned for a competition without a highlight video
	ErrUnknownCompetition = errors.New("unknown competition")
	// ErrVideosUnavailable is returned when object storage is not configured
	ErrVideosUnavailable = errors.New("video storage unavailable")
)

// videoKeys maps competition names to highlight video object keys
var videoKeys = map[string]string{
	"All Leagues":    "videos/all-leagues.mp4",
	"Premier League": "videos/premier-league.mp4",
	"LaLiga":         "videos/laliga.mp4",
	"Bundesliga":     "videos/bundesliga.mp4",
	"Serie A":        "videos/serie-a.mp4",
	"Ligue 1":        "videos/ligue-1.mp4",
}

// VideoTTL is how long a presigned video link stays valid
const VideoTTL = 30 * time.Minute

// VideoLinker presigns object downloads; storage.Service satisfies it
type VideoLinker interface {
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// VideoKey returns the object key of the competition's highlight video
func VideoKey(competition string) (string, bool) {
	key, ok := videoKeys[competition]
	return key, ok
}
