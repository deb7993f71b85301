package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linesdesk/ingestion/internal/ingest"
	"linesdesk/ingestion/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SyncRunner runs one full odds sync
type SyncRunner interface {
	Run(ctx context.Context) (*ingest.Report, error)
}

// Config holds scheduler settings
type Config struct {
	SyncCron    string
	InitialSync bool
}

// Scheduler runs the periodic odds sync and keeps system gauges fresh
type Scheduler struct {
	cfg       Config
	syncer    SyncRunner
	cron      *cron.Cron
	ticker    *time.Ticker
	stopChan  chan struct{}
	startedAt time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg Config, syncer SyncRunner) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		syncer: syncer,
		// Overlapping cron ticks are skipped while a sync is still running
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		stopChan: make(chan struct{}),
	}
}

// Start schedules the sync job and starts background loops
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")
	s.startedAt = time.Now()

	if _, err := s.cron.AddFunc(s.cfg.SyncCron, func() {
		s.runSync(ctx, "scheduled")
	}); err != nil {
		return fmt.Errorf("failed to schedule odds sync: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.SyncCron).
		Msg("Odds sync scheduled")

	s.ticker = time.NewTicker(15 * time.Second)
	go s.trackUptime(ctx)

	if s.cfg.InitialSync {
		go s.runSync(ctx, "initial")
	}

	return nil
}

// Stop stops the scheduler and waits for a running sync to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) runSync(ctx context.Context, trigger string) {
	log.Info().Str("trigger", trigger).Msg("Running odds sync...")

	report, err := s.syncer.Run(ctx)
	if errors.Is(err, ingest.ErrSyncInProgress) {
		log.Warn().Str("trigger", trigger).Msg("Odds sync already running, skipped")
		return
	}
	if err != nil {
		metrics.RecordError("scheduler", "sync")
		log.Error().Err(err).Str("trigger", trigger).Msg("Odds sync failed")
		return
	}

	log.Info().
		Str("trigger", trigger).
		Str("run_id", report.RunID).
		Bool("success", report.Success).
		Msg("Odds sync finished")
}

// trackUptime refreshes the uptime gauge until stopped
func (s *Scheduler) trackUptime(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-s.ticker.C:
			metrics.SystemUptime.Set(time.Since(s.startedAt).Seconds())
		}
	}
}
