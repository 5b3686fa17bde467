package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Analysis
	AnalysisTopN int `mapstructure:"ANALYSIS_TOP_N"`
	CurrentWeek  int `mapstructure:"CURRENT_WEEK"`

	// Prop recommendations
	StatCategory          string  `mapstructure:"STAT_CATEGORY"`
	MinDiffAbs            float64 `mapstructure:"MIN_DIFF_ABS"`
	MinDiffPct            float64 `mapstructure:"MIN_DIFF_PCT"`
	RecommendationRule    string  `mapstructure:"RECOMMENDATION_RULE"`
	MatchTeamRequired     bool    `mapstructure:"MATCH_TEAM_REQUIRED"`
	MatchPositionRequired bool    `mapstructure:"MATCH_POSITION_REQUIRED"`

	// Lines source
	UnderdogEnabled     bool   `mapstructure:"UNDERDOG_ENABLED"`
	UnderdogEndpoint    string `mapstructure:"UNDERDOG_ENDPOINT"`
	UnderdogAPIKey      string `mapstructure:"UNDERDOG_API_KEY"`
	LinesCachePath      string `mapstructure:"LINES_CACHE_PATH"`
	LinesCacheTTL       int    `mapstructure:"LINES_CACHE_TTL_MINUTES"`
	OfflineLinesPath    string `mapstructure:"OFFLINE_LINES_PATH"`
	LinesRefreshEnabled bool   `mapstructure:"LINES_REFRESH_ENABLED"`
	LinesRefreshCron    string `mapstructure:"LINES_REFRESH_CRON"`

	// ESPN league access
	ESPNLeagueID int    `mapstructure:"ESPN_LEAGUE_ID"`
	ESPNSeason   int    `mapstructure:"ESPN_SEASON"`
	ESPNS2       string `mapstructure:"ESPN_S2"`
	SWID         string `mapstructure:"SWID"`

	// Export
	ExportDir string `mapstructure:"EXPORT_DIR"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_URL", "fantasy_edge.db")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")

	viper.SetDefault("ANALYSIS_TOP_N", 5)
	viper.SetDefault("CURRENT_WEEK", 0)

	viper.SetDefault("STAT_CATEGORY", "rushing_yards")
	viper.SetDefault("MIN_DIFF_ABS", 5.0)
	viper.SetDefault("MIN_DIFF_PCT", 0.10)
	viper.SetDefault("RECOMMENDATION_RULE", "abs_or_pct")
	viper.SetDefault("MATCH_TEAM_REQUIRED", false)
	viper.SetDefault("MATCH_POSITION_REQUIRED", false)

	viper.SetDefault("UNDERDOG_ENABLED", false)
	viper.SetDefault("UNDERDOG_ENDPOINT", "")
	viper.SetDefault("UNDERDOG_API_KEY", "")
	viper.SetDefault("LINES_CACHE_PATH", "data/cache/underdog_lines.json")
	viper.SetDefault("LINES_CACHE_TTL_MINUTES", 60)
	viper.SetDefault("OFFLINE_LINES_PATH", "data/lines.json")
	viper.SetDefault("LINES_REFRESH_ENABLED", false)
	viper.SetDefault("LINES_REFRESH_CRON", "@every 1h")

	viper.SetDefault("ESPN_LEAGUE_ID", 0)
	viper.SetDefault("ESPN_SEASON", 2025)
	viper.SetDefault("ESPN_S2", "")
	viper.SetDefault("SWID", "")

	viper.SetDefault("EXPORT_DIR", "exports")

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
