package ingest

import (
	"context"
	"fmt"
	"time"

	"linesdesk/ingestion/internal/models"
	"linesdesk/ingestion/internal/worker"
)

// EventStore persists the event graph
type EventStore interface {
	// UpsertEvent writes the event keyed by external id. created reports
	// whether the row did not exist before this call. ImageURL is only
	// written on create.
	UpsertEvent(ctx context.Context, event *models.Event) (id int64, created bool, err error)
	UpsertBookmaker(ctx context.Context, bm *models.Bookmaker) (int64, error)
	UpsertMarket(ctx context.Context, m *models.Market) (int64, error)
	// ReplaceOutcomes deletes every outcome of the market, then inserts outcomes
	ReplaceOutcomes(ctx context.Context, marketID int64, outcomes []models.Outcome) error
	GetEventGraph(ctx context.Context, eventID int64) (*models.Event, error)
}

// PredictionStore persists AI predictions
type PredictionStore interface {
	ExistsForEvent(ctx context.Context, eventID int64) (bool, error)
	Create(ctx context.Context, p *models.EventPrediction) error
	DeleteForPastEvents(ctx context.Context, now time.Time) (int64, error)
	ListPastEvents(ctx context.Context, now time.Time) ([]models.Event, error)
}

// Invalidator drops cached read models for an event
type Invalidator interface {
	InvalidateEvent(ctx context.Context, externalID string) error
}

// TaskSink runs background work and hands back an awaitable task
type TaskSink interface {
	Submit(name string, fn func(ctx context.Context) error) *worker.Task
}

// Fetcher loads raw events for one league inside a time window
type Fetcher interface {
	FetchOdds(ctx context.Context, league models.League, from, to time.Time) ([]models.EventInput, error)
}

// StoreWriteError reports a failed write for one event's graph
type StoreWriteError struct {
	Op         string
	ExternalID string
	Err        error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s for event %s: %v", e.Op, e.ExternalID, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}
