// Package app wires the ingestion components from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"linesdesk/ingestion/internal/ai"
	"linesdesk/ingestion/internal/cache"
	"linesdesk/ingestion/internal/client"
	"linesdesk/ingestion/internal/config"
	"linesdesk/ingestion/internal/ingest"
	"linesdesk/ingestion/internal/models"
	"linesdesk/ingestion/internal/repository"
	"linesdesk/ingestion/internal/worker"

	"github.com/rs/zerolog/log"
)

// App holds the constructed service graph
type App struct {
	Config *config.Config
	DB     *repository.Database
	Cache  *cache.RedisCache // nil when Redis is unreachable
	Pool   *worker.Pool
	Syncer *ingest.Syncer
}

// New validates credentials, connects stores, and builds the sync pipeline.
// Credentials are checked before any connection is attempted.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	leagues, err := models.ResolveLeagues(cfg.SyncLeagues)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_LEAGUES: %w", err)
	}

	oddsClient, err := client.NewOddsClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, cfg.OddsAPITimeout, cfg.OddsConcurrency)
	if err != nil {
		return nil, err
	}

	completer, err := ai.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAITimeout)
	if err != nil {
		return nil, err
	}

	db, err := repository.NewDatabase(ctx, repository.Config{
		DSN:      cfg.DatabaseDSN(),
		Host:     cfg.DatabaseHost,
		Database: cfg.DatabaseName,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		DB:     db,
		Pool:   worker.NewPool(cfg.EnrichWorkers),
	}

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		a.Cache = redisCache
	}

	opts := []ingest.EngineOption{ingest.WithMarketBatchSize(cfg.SyncMarketBatchSize)}
	if a.Cache != nil {
		opts = append(opts, ingest.WithInvalidator(a.Cache))
	}

	enricher := ingest.NewEnricher(db.Events, db.Predictions, completer)
	engine := ingest.NewEngine(db.Events, enricher, a.Pool, opts...)
	pruner := ingest.NewPruner(db.Predictions, cfg.PruneScanPastEvents)

	a.Syncer = ingest.NewSyncer(oddsClient, engine, pruner, ingest.SyncConfig{
		Leagues:        leagues,
		Window:         cfg.OddsWindow(),
		EventBatchSize: cfg.SyncEventBatchSize,
		PruneAfter:     cfg.SyncPruneAfter,
	})

	log.Info().
		Strs("leagues", cfg.SyncLeagues).
		Int("enrich_workers", cfg.EnrichWorkers).
		Str("model", completer.Model()).
		Msg("Sync pipeline initialized")

	return a, nil
}

// Close drains background enrichment, then releases connections
func (a *App) Close(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.Pool.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Enrichment tasks did not finish before shutdown")
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	a.DB.Close()
}
