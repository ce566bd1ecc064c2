package predictions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sportiify/internal/database"
)

var (
	// ErrPredictionNotFound is returned when no prediction is stored for the match
	ErrPredictionNotFound = errors.New("prediction not found")
)

// Store persists match predictions
type Store interface {
	Upsert(ctx context.Context, p *MatchPrediction) error
	Get(ctx context.Context, mid string) (*MatchPrediction, error)
	List(ctx context.Context, params ListParams) ([]MatchPrediction, int64, error)
}

// Repository handles all database operations for predictions
type Repository struct {
	db database.Service
}

// NewRepository creates a new predictions repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

// Upsert inserts the prediction or replaces the stored one for the same match
func (r *Repository) Upsert(ctx context.Context, p *MatchPrediction) error {
	query := `
		INSERT INTO match_predictions (mid, home_team, away_team, match_date, competition_name, prediction, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (mid) DO UPDATE SET
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			match_date = EXCLUDED.match_date,
			competition_name = EXCLUDED.competition_name,
			prediction = EXCLUDED.prediction,
			updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query, p.MID, p.HomeTeam, p.AwayTeam, p.MatchDate.UTC(), p.CompetitionName, []byte(p.Prediction))
	if err != nil {
		return fmt.Errorf("failed to upsert prediction %s: %w", p.MID, err)
	}
	return nil
}

// Get retrieves the prediction stored for a match
func (r *Repository) Get(ctx context.Context, mid string) (*MatchPrediction, error) {
	query := `
		SELECT mid, home_team, away_team, match_date, competition_name, prediction
		FROM match_predictions
		WHERE mid = $1
	`

	p, err := scanPrediction(r.db.QueryRow(ctx, query, mid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPredictionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// List returns one filtered, sorted page and the total number of matching rows
func (r *Repository) List(ctx context.Context, params ListParams) ([]MatchPrediction, int64, error) {
	where, args := buildFilter(params)

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM match_predictions` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count predictions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT mid, home_team, away_team, match_date, competition_name, prediction
		FROM match_predictions%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy(params.Sort), len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	out := []MatchPrediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan prediction: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate predictions: %w", err)
	}

	return out, totalCount, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrediction(row scanner) (*MatchPrediction, error) {
	p := &MatchPrediction{}
	var raw []byte
	if err := row.Scan(&p.MID, &p.HomeTeam, &p.AwayTeam, &p.MatchDate, &p.CompetitionName, &raw); err != nil {
		return nil, err
	}
	p.MatchDate = p.MatchDate.UTC()
	p.Prediction = raw
	return p, nil
}

// buildFilter renders the WHERE clause for params with positional arguments
func buildFilter(params ListParams) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if params.Date != nil {
		day := time.Date(params.Date.Year(), params.Date.Month(), params.Date.Day(), 0, 0, 0, 0, time.UTC)
		args = append(args, day, day.AddDate(0, 0, 1))
		conds = append(conds, fmt.Sprintf("match_date >= $%d AND match_date < $%d", len(args)-1, len(args)))
	}
	if params.League != "" {
		args = append(args, params.League)
		conds = append(conds, fmt.Sprintf("competition_name = $%d", len(args)))
	}
	if params.Team != "" {
		args = append(args, "%"+escapeLike(params.Team)+"%")
		conds = append(conds, fmt.Sprintf("(home_team ILIKE $%d OR away_team ILIKE $%d)", len(args), len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(sort string) string {
	switch sort {
	case SortLeague:
		return "competition_name ASC, match_date ASC, mid ASC"
	case SortTeam:
		return "home_team ASC, away_team ASC, match_date ASC, mid ASC"
	default:
		return "match_date ASC, mid ASC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
