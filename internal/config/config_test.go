package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "odds-key")
	t.Setenv("OPENAI_API_KEY", "ai-key")
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("APP_ENV", "test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.the-odds-api.com/v4", cfg.OddsAPIBaseURL)
	assert.Equal(t, 7, cfg.OddsWindowDays)
	assert.Equal(t, 7*24*time.Hour, cfg.OddsWindow())
	assert.Equal(t, 2, cfg.SyncEventBatchSize)
	assert.Equal(t, 3, cfg.SyncMarketBatchSize)
	assert.Equal(t, []string{"nfl", "ncaaf", "nba", "ncaab", "mlb", "nhl"}, cfg.SyncLeagues)
	assert.True(t, cfg.SyncPruneAfter)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoad_MissingOddsKeyFailsFast(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ODDS_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ODDS_API_KEY")
}

func TestLoad_MissingAIKeyFailsFast(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_API_KEY", "  ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestValidate_ProductionNeedsAdminToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_TOKEN")

	t.Setenv("ADMIN_TOKEN", "let-me-in")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestValidate_BatchSizes(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SYNC_EVENT_BATCH_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch sizes")
}
