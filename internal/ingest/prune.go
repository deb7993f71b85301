package ingest

import (
	"context"
	"fmt"
	"time"

	"linesdesk/ingestion/internal/metrics"

	"github.com/rs/zerolog/log"
)

// PruneReport summarizes one prune pass
type PruneReport struct {
	PredictionsDeleted int64 `json:"predictionsDeleted"`
	PastEvents         int   `json:"pastEvents"`
}

// Pruner removes predictions of events that already started
type Pruner struct {
	predictions PredictionStore
	scanEvents  bool
}

// NewPruner creates a pruner. With scanEvents set it also counts past events;
// event rows themselves are kept.
func NewPruner(predictions PredictionStore, scanEvents bool) *Pruner {
	return &Pruner{predictions: predictions, scanEvents: scanEvents}
}

// Prune deletes predictions whose event commenced before now
func (p *Pruner) Prune(ctx context.Context, now time.Time) (*PruneReport, error) {
	report := &PruneReport{}

	if p.scanEvents {
		past, err := p.predictions.ListPastEvents(ctx, now)
		if err != nil {
			return nil, fmt.Errorf("failed to list past events: %w", err)
		}
		report.PastEvents = len(past)
	}

	deleted, err := p.predictions.DeleteForPastEvents(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to delete past predictions: %w", err)
	}
	report.PredictionsDeleted = deleted
	metrics.RecordPruned(deleted)

	log.Info().
		Int64("predictions_deleted", deleted).
		Int("past_events", report.PastEvents).
		Msg("Prune completed")

	return report, nil
}
