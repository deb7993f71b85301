package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"linesdesk/ingestion/internal/metrics"
	"linesdesk/ingestion/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultEventBatchSize bounds concurrent event upserts per league
const DefaultEventBatchSize = 2

// ErrSyncInProgress is returned when a sync is requested while one is running
var ErrSyncInProgress = errors.New("sync already in progress")

// SyncConfig holds the knobs of a full sync pass
type SyncConfig struct {
	Leagues        []models.League
	Window         time.Duration
	EventBatchSize int
	PruneAfter     bool
}

// LeagueSummary is the outcome of syncing one league
type LeagueSummary struct {
	League  string `json:"league"`
	Events  int    `json:"events"`
	Created int    `json:"created"`
	Failed  int    `json:"failed"`
	Error   string `json:"error,omitempty"`
}

// Report is the outcome of a full sync pass
type Report struct {
	RunID      string          `json:"runId"`
	StartedAt  time.Time       `json:"startedAt"`
	Duration   time.Duration   `json:"duration"`
	Success    bool            `json:"success"`
	Summary    []LeagueSummary `json:"summary"`
	Prune      *PruneReport    `json:"prune,omitempty"`
	PruneError string          `json:"pruneError,omitempty"`
}

// Syncer fetches every configured league and writes it through the engine
type Syncer struct {
	fetcher Fetcher
	engine  *Engine
	pruner  *Pruner
	cfg     SyncConfig
	now     func() time.Time

	running sync.Mutex
}

// NewSyncer creates a syncer; pruner may be nil
func NewSyncer(fetcher Fetcher, engine *Engine, pruner *Pruner, cfg SyncConfig) *Syncer {
	if cfg.EventBatchSize < 1 {
		cfg.EventBatchSize = DefaultEventBatchSize
	}
	return &Syncer{
		fetcher: fetcher,
		engine:  engine,
		pruner:  pruner,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run syncs leagues one after another. A league whose fetch fails is recorded
// in the report and the pass moves on; previously written leagues are kept.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	if !s.running.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.running.Unlock()

	start := s.now()
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: start.UTC(),
		Success:   true,
		Summary:   make([]LeagueSummary, 0, len(s.cfg.Leagues)),
	}

	logger := log.With().Str("run_id", report.RunID).Logger()
	logger.Info().Int("leagues", len(s.cfg.Leagues)).Msg("Starting odds sync")

	from := start
	to := start.Add(s.cfg.Window)

	for _, league := range s.cfg.Leagues {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		summary := s.syncLeague(ctx, league, from, to)
		if summary.Error != "" {
			report.Success = false
		}
		report.Summary = append(report.Summary, summary)
	}

	if s.cfg.PruneAfter && s.pruner != nil {
		pruned, err := s.pruner.Prune(ctx, s.now())
		if err != nil {
			metrics.RecordError("ingest", "prune")
			logger.Error().Err(err).Msg("Prune after sync failed")
			report.PruneError = err.Error()
		} else {
			report.Prune = pruned
		}
	}

	report.Duration = time.Since(start)
	status := "success"
	if !report.Success {
		status = "partial"
	}
	metrics.RecordSync("full", status, report.Duration.Seconds())

	logger.Info().
		Bool("success", report.Success).
		Dur("duration", report.Duration).
		Msg("Odds sync completed")

	return report, nil
}

func (s *Syncer) syncLeague(ctx context.Context, league models.League, from, to time.Time) LeagueSummary {
	start := time.Now()
	summary := LeagueSummary{League: league.Name}

	events, err := s.fetcher.FetchOdds(ctx, league, from, to)
	if err != nil {
		// All-or-nothing: nothing from a failed fetch is written
		metrics.RecordError("ingest", "upstream_fetch")
		metrics.RecordSync(league.Name, "failed", time.Since(start).Seconds())
		log.Error().Err(err).Str("league", league.Name).Msg("Odds fetch failed, skipping league")
		summary.Error = err.Error()
		return summary
	}
	summary.Events = len(events)

	var mu sync.Mutex
	err = RunBatches(ctx, events, s.cfg.EventBatchSize, func(ctx context.Context, in models.EventInput) error {
		result, err := s.engine.UpsertEvent(ctx, in)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			// One event's failed write is skipped; the next sync rewrites it
			summary.Failed++
			metrics.RecordError("ingest", "store_write")
			log.Error().Err(err).Str("league", league.Name).Str("external_id", in.ID).Msg("Failed to upsert event")
			return nil
		}
		if result.Created {
			summary.Created++
		}
		metrics.RecordEventUpsert(league.Name, result.Created)
		return nil
	})
	if err != nil {
		summary.Error = err.Error()
	}

	status := "success"
	if summary.Error != "" || summary.Failed > 0 {
		status = "partial"
	}
	metrics.RecordSync(league.Name, status, time.Since(start).Seconds())

	log.Info().
		Str("league", league.Name).
		Int("events", summary.Events).
		Int("created", summary.Created).
		Int("failed", summary.Failed).
		Msg("League synced")

	return summary
}
