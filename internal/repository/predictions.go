package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"linesdesk/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PredictionRepository handles AI prediction articles
type PredictionRepository struct {
	db *Database
}

// ExistsForEvent reports whether the event already has a prediction
func (r *PredictionRepository) ExistsForEvent(ctx context.Context, eventID int64) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_predictions WHERE event_id = $1)`, eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check prediction: %w", err)
	}
	return exists, nil
}

// Create inserts a prediction with validation
func (r *PredictionRepository) Create(ctx context.Context, pred *models.EventPrediction) error {
	if pred == nil {
		return fmt.Errorf("prediction cannot be nil")
	}
	if err := pred.Validate(); err != nil {
		return fmt.Errorf("prediction validation failed: %w", err)
	}

	sections, err := pred.SectionsJSON()
	if err != nil {
		return fmt.Errorf("failed to encode sections: %w", err)
	}

	query := `
		INSERT INTO event_predictions (event_id, title, sections, model)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err = r.db.Pool.QueryRow(ctx, query, pred.EventID, pred.Title, sections, pred.Model).
		Scan(&pred.ID, &pred.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	log.Debug().
		Int64("prediction_id", pred.ID).
		Int64("event_id", pred.EventID).
		Msg("Prediction stored")

	return nil
}

// GetLatestForEvent returns the newest prediction of an event, or nil
func (r *PredictionRepository) GetLatestForEvent(ctx context.Context, eventID int64) (*models.EventPrediction, error) {
	query := `
		SELECT id, event_id, title, sections, model, created_at
		FROM event_predictions
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		pred     models.EventPrediction
		sections []byte
	)
	err := r.db.Pool.QueryRow(ctx, query, eventID).Scan(
		&pred.ID, &pred.EventID, &pred.Title, &sections, &pred.Model, &pred.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // Enrichment may not have run yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	if err := json.Unmarshal(sections, &pred.Sections); err != nil {
		return nil, fmt.Errorf("failed to decode prediction sections: %w", err)
	}
	return &pred, nil
}

// DeleteForPastEvents removes predictions whose event commenced before now
func (r *PredictionRepository) DeleteForPastEvents(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM event_predictions p
		USING events e
		WHERE p.event_id = e.id AND e.commence_time < $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete past predictions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListPastEvents returns events that commenced before now (read-only)
func (r *PredictionRepository) ListPastEvents(ctx context.Context, now time.Time) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE commence_time < $1
		ORDER BY commence_time ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list past events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan past event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating past events: %w", err)
	}
	return events, nil
}
