package ingest

import (
	"context"
	"fmt"

	"linesdesk/ingestion/internal/ai"
	"linesdesk/ingestion/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Enricher writes one AI prediction article for a newly seen event
type Enricher struct {
	events      EventStore
	predictions PredictionStore
	completer   ai.Completer
}

// NewEnricher creates an enricher
func NewEnricher(events EventStore, predictions PredictionStore, completer ai.Completer) *Enricher {
	return &Enricher{
		events:      events,
		predictions: predictions,
		completer:   completer,
	}
}

// Enrich generates and stores a prediction when isNew is set and the event has
// none yet. An event that was not new on its first sync is never revisited.
func (en *Enricher) Enrich(ctx context.Context, isNew bool, eventID int64) error {
	if !isNew {
		return nil
	}

	exists, err := en.predictions.ExistsForEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to check existing prediction: %w", err)
	}
	if exists {
		metrics.RecordEnrichment("exists")
		return nil
	}

	event, err := en.events.GetEventGraph(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to load event graph: %w", err)
	}
	if event == nil {
		return fmt.Errorf("event %d not found", eventID)
	}

	text, err := en.completer.Complete(ctx, ai.SystemPrompt, ai.UserPrompt(event))
	if err != nil {
		return fmt.Errorf("failed to generate prediction: %w", err)
	}

	prediction := ai.ParsePrediction(eventID, text)
	prediction.Model = en.completer.Model()
	if err := prediction.Validate(); err != nil {
		return fmt.Errorf("malformed prediction response: %w", err)
	}

	if err := en.predictions.Create(ctx, prediction); err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}

	metrics.RecordEnrichment("created")
	log.Info().
		Int64("event_id", eventID).
		Str("external_id", event.ExternalID).
		Str("title", prediction.Title).
		Msg("Prediction created")

	return nil
}
