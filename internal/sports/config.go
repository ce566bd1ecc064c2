package sports

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Sports served by the proxy
const (
	Soccer     = "soccer"
	NFL        = "nfl"
	Basketball = "basketball"
)

// Provider is the configuration of one third-party sports-data API
type Provider struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	BaseURL  string `yaml:"base_url" env:"API_BASE_URL"`
	Token    string `yaml:"token" env:"API_TOKEN"`
	Timezone string `yaml:"timezone" env:"TIMEZONE"`

	CompetitionStatus   int `yaml:"competition_status" env:"COMPETITION_STATUS"`
	CompetitionsPerPage int `yaml:"competitions_per_page" env:"COMPETITIONS_PER_PAGE"`

	MatchStatus       int  `yaml:"match_status" env:"MATCH_STATUS"`
	MatchesPerPage    int  `yaml:"matches_per_page" env:"MATCHES_PER_PAGE"`
	DayMatchesPerPage int  `yaml:"day_matches_per_page" env:"DAY_MATCHES_PER_PAGE"`
	PreSquad          bool `yaml:"pre_squad" env:"PRE_SQUAD"`
	// WindowMonths is the default half-width of the competition matches date range; 0 sends no range
	WindowMonths int `yaml:"window_months" env:"WINDOW_MONTHS"`
}

// Config holds the sports service configuration
type Config struct {
	Port         string        `yaml:"port" env:"SPORTS_SERVICE_PORT" env-default:"8083"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env:"SPORTS_CACHE_TTL" env-default:"5m"`
	WarmSchedule string        `yaml:"warm_schedule" env:"SPORTS_WARM_SCHEDULE" env-default:"*/15 * * * *"`
	HTTPTimeout  time.Duration `yaml:"http_timeout" env:"SPORTS_HTTP_TIMEOUT" env-default:"15s"`

	Soccer     Provider `yaml:"soccer" env-prefix:"SOCCER_"`
	NFL        Provider `yaml:"nfl" env-prefix:"NFL_"`
	Basketball Provider `yaml:"basketball" env-prefix:"BASKETBALL_"`
}

// Defaults returns the per-sport query shapes the providers expect
func Defaults() Config {
	return Config{
		Soccer: Provider{
			Enabled:             true,
			Timezone:            "+5:30",
			CompetitionStatus:   3,
			CompetitionsPerPage: 50,
			MatchStatus:         1,
			MatchesPerPage:      20,
			DayMatchesPerPage:   50,
			PreSquad:            true,
			WindowMonths:        1,
		},
		NFL: Provider{
			Enabled:             true,
			Timezone:            "+5:30",
			CompetitionStatus:   2,
			CompetitionsPerPage: 10,
			MatchStatus:         2,
		},
		Basketball: Provider{
			Enabled:             true,
			Timezone:            "+5:30",
			CompetitionStatus:   2,
			CompetitionsPerPage: 10,
			MatchStatus:         2,
		},
	}
}

// LoadConfig reads the optional YAML file at path, then the environment, over the defaults.
// The result is validated; an enabled sport without base URL or token is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	var err error
	if path != "" {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, fmt.Errorf("config file %s: %w", path, statErr)
		}
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read sports config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Providers returns the enabled providers keyed by sport
func (c *Config) Providers() map[string]Provider {
	out := make(map[string]Provider, 3)
	for sport, p := range map[string]Provider{Soccer: c.Soccer, NFL: c.NFL, Basketball: c.Basketball} {
		if p.Enabled {
			out[sport] = p
		}
	}
	return out
}

// Validate fails when any enabled provider is incomplete or none is enabled
func (c *Config) Validate() error {
	providers := c.Providers()
	if len(providers) == 0 {
		return errors.New("no sports provider is enabled")
	}

	var problems []string
	for sport, p := range providers {
		prefix := strings.ToUpper(sport) + "_"
		if p.BaseURL == "" {
			problems = append(problems, prefix+"API_BASE_URL")
		}
		if p.Token == "" {
			problems = append(problems, prefix+"API_TOKEN")
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("sports provider configuration incomplete, missing: %s", strings.Join(problems, ", "))
	}

	if c.CacheTTL <= 0 {
		return errors.New("SPORTS_CACHE_TTL must be positive")
	}
	return nil
}
