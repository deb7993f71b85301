package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Odds API
	OddsAPIKey      string        `envconfig:"ODDS_API_KEY"`
	OddsAPIBaseURL  string        `envconfig:"ODDS_API_BASE_URL" default:"https://api.the-odds-api.com/v4"`
	OddsAPITimeout  time.Duration `envconfig:"ODDS_API_TIMEOUT" default:"30s"`
	OddsWindowDays  int           `envconfig:"ODDS_WINDOW_DAYS" default:"7"`
	OddsConcurrency int           `envconfig:"ODDS_API_CONCURRENCY" default:"4"`

	// AI completion
	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL" default:""`
	OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAITimeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"linesdesk"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"linesdesk"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP
	HTTPPort    int      `envconfig:"HTTP_PORT" default:"8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	AdminToken  string   `envconfig:"ADMIN_TOKEN" default:""`

	// Sync
	SyncLeagues         []string `envconfig:"SYNC_LEAGUES" default:"nfl,ncaaf,nba,ncaab,mlb,nhl"`
	SyncEventBatchSize  int      `envconfig:"SYNC_EVENT_BATCH_SIZE" default:"2"`
	SyncMarketBatchSize int      `envconfig:"SYNC_MARKET_BATCH_SIZE" default:"3"`
	SyncPruneAfter      bool     `envconfig:"SYNC_PRUNE_AFTER" default:"true"`
	PruneScanPastEvents bool     `envconfig:"PRUNE_SCAN_PAST_EVENTS" default:"true"`

	// Enrichment
	EnrichWorkers int `envconfig:"ENRICH_WORKERS" default:"2"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`
	SyncCron           string `envconfig:"SYNC_CRON" default:"*/30 * * * *"`

	// Caching TTL (in seconds)
	CacheTTLOdds int `envconfig:"CACHE_TTL_ODDS" default:"300"` // 5 minutes
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks credentials and limits before anything touches the network
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OddsAPIKey) == "" {
		return fmt.Errorf("ODDS_API_KEY is required to fetch odds")
	}

	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return fmt.Errorf("OPENAI_API_KEY is required to generate event predictions")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.OddsWindowDays < 1 {
		return fmt.Errorf("ODDS_WINDOW_DAYS must be at least 1, got %d", c.OddsWindowDays)
	}

	if c.SyncEventBatchSize < 1 || c.SyncMarketBatchSize < 1 {
		return fmt.Errorf("sync batch sizes must be positive")
	}

	if len(c.SyncLeagues) == 0 {
		return fmt.Errorf("SYNC_LEAGUES must name at least one league")
	}

	if c.IsProduction() && c.AdminToken == "" {
		return fmt.Errorf("ADMIN_TOKEN must be set in production")
	}

	return nil
}

// OddsWindow returns the commence-time window used for odds fetches
func (c *Config) OddsWindow() time.Duration {
	return time.Duration(c.OddsWindowDays) * 24 * time.Hour
}

// CacheTTL returns the display odds cache TTL
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLOdds) * time.Second
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
