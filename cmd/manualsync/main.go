// Command manualsync runs one full odds sync (and prune) and exits.
// Enrichment started by the sync is awaited before exit so no prediction is cut off.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"linesdesk/ingestion/internal/app"
	"linesdesk/ingestion/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	leagues := flag.String("leagues", "", "comma-separated leagues to sync (default SYNC_LEAGUES)")
	noPrune := flag.Bool("no-prune", false, "skip pruning predictions of past events")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.MustLoad()
	if *leagues != "" {
		cfg.SyncLeagues = strings.Split(*leagues, ",")
	}
	if *noPrune {
		cfg.SyncPruneAfter = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}

	report, err := a.Syncer.Run(ctx)
	if err != nil {
		a.Close(time.Minute)
		log.Fatal().Err(err).Msg("Sync failed")
	}

	for _, s := range report.Summary {
		event := log.Info()
		if s.Error != "" {
			event = log.Error().Str("error", s.Error)
		}
		event.
			Str("league", s.League).
			Int("events", s.Events).
			Int("created", s.Created).
			Int("failed", s.Failed).
			Msg("League summary")
	}
	if report.Prune != nil {
		log.Info().
			Int64("predictions_deleted", report.Prune.PredictionsDeleted).
			Int("past_events", report.Prune.PastEvents).
			Msg("Prune summary")
	}

	log.Info().Msg("Waiting for enrichment to finish...")
	a.Close(5 * time.Minute)

	if !report.Success {
		os.Exit(1)
	}
	log.Info().Str("run_id", report.RunID).Msg("Manual sync complete")
}
