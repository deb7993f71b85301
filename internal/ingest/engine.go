package ingest

import (
	"context"
	"fmt"
	"strconv"

	"linesdesk/ingestion/internal/metrics"
	"linesdesk/ingestion/internal/models"
	"linesdesk/ingestion/internal/worker"

	"github.com/rs/zerolog/log"
)

// DefaultMarketBatchSize bounds concurrent market writes per bookmaker
const DefaultMarketBatchSize = 3

// Trigger reacts to a written event graph
type Trigger interface {
	Enrich(ctx context.Context, isNew bool, eventID int64) error
}

// Result describes one upserted event
type Result struct {
	EventID    int64
	ExternalID string
	Created    bool

	// Enrichment finishes independently of the upsert; Wait on it to observe the outcome
	Enrichment *worker.Task
}

// Engine writes an event graph so it matches the latest odds payload
type Engine struct {
	events          EventStore
	trigger         Trigger
	sink            TaskSink
	cache           Invalidator
	pickImage       models.ImagePicker
	marketBatchSize int
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithInvalidator drops cached display odds after each write
func WithInvalidator(inv Invalidator) EngineOption {
	return func(e *Engine) { e.cache = inv }
}

// WithImagePicker replaces the random hero image picker
func WithImagePicker(pick models.ImagePicker) EngineOption {
	return func(e *Engine) { e.pickImage = pick }
}

// WithMarketBatchSize sets how many markets of a bookmaker are written at once
func WithMarketBatchSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.marketBatchSize = n
		}
	}
}

// NewEngine creates an upsert engine
func NewEngine(events EventStore, trigger Trigger, sink TaskSink, opts ...EngineOption) *Engine {
	e := &Engine{
		events:          events,
		trigger:         trigger,
		sink:            sink,
		pickImage:       models.RandomImage,
		marketBatchSize: DefaultMarketBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// UpsertEvent writes the event, its bookmakers, markets and outcomes, then
// hands new events to the enrichment trigger. Store failures come back as
// *StoreWriteError; enrichment failures never do.
func (e *Engine) UpsertEvent(ctx context.Context, in models.EventInput) (*Result, error) {
	event := in.ToEvent()
	event.ImageURL = models.PickEventImage(event.SportKey, e.pickImage)

	eventID, created, err := e.events.UpsertEvent(ctx, event)
	if err != nil {
		return nil, &StoreWriteError{Op: "upsert event", ExternalID: in.ID, Err: err}
	}

	for i := range in.Bookmakers {
		bmIn := &in.Bookmakers[i]

		bookmakerID, err := e.events.UpsertBookmaker(ctx, bmIn.ToBookmaker(eventID))
		if err != nil {
			return nil, &StoreWriteError{Op: "upsert bookmaker " + bmIn.Key, ExternalID: in.ID, Err: err}
		}

		err = RunBatches(ctx, bmIn.Markets, e.marketBatchSize, func(ctx context.Context, mIn models.MarketInput) error {
			return e.writeMarket(ctx, bookmakerID, &mIn)
		})
		if err != nil {
			return nil, &StoreWriteError{Op: "write markets of " + bmIn.Key, ExternalID: in.ID, Err: err}
		}
	}

	if e.cache != nil {
		if err := e.cache.InvalidateEvent(ctx, in.ID); err != nil {
			log.Warn().Err(err).Str("external_id", in.ID).Msg("Failed to invalidate cached odds")
		}
	}

	result := &Result{
		EventID:    eventID,
		ExternalID: in.ID,
		Created:    created,
	}

	// Only new events can need a prediction; skip the pool round trip otherwise
	if created && e.trigger != nil && e.sink != nil {
		result.Enrichment = e.sink.Submit("enrich:"+strconv.FormatInt(eventID, 10), func(ctx context.Context) error {
			return e.enrichSafely(ctx, created, eventID)
		})
	} else {
		result.Enrichment = worker.Completed("enrich:skipped", nil)
	}

	return result, nil
}

func (e *Engine) writeMarket(ctx context.Context, bookmakerID int64, mIn *models.MarketInput) error {
	marketID, err := e.events.UpsertMarket(ctx, mIn.ToMarket(bookmakerID))
	if err != nil {
		return fmt.Errorf("upsert market %s: %w", mIn.Key, err)
	}
	if err := e.events.ReplaceOutcomes(ctx, marketID, mIn.ToOutcomes(marketID)); err != nil {
		return fmt.Errorf("replace outcomes of %s: %w", mIn.Key, err)
	}
	return nil
}

// enrichSafely runs the trigger, logging failures and recovering panics
func (e *Engine) enrichSafely(ctx context.Context, isNew bool, eventID int64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enrichment panicked: %v", r)
		}
		if err != nil {
			metrics.RecordEnrichment("failed")
			log.Error().Err(err).Int64("event_id", eventID).Msg("Prediction enrichment failed")
		}
	}()
	return e.trigger.Enrich(ctx, isNew, eventID)
}
