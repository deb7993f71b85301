package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linesdesk/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// EventRepository handles the event graph: events, bookmakers, markets, outcomes
type EventRepository struct {
	db *Database
}

// UpsertEvent inserts or updates an event by external id. created is derived
// from the same statement (xmax = 0 only for freshly inserted rows). The image
// is written on insert and left alone on update.
func (r *EventRepository) UpsertEvent(ctx context.Context, event *models.Event) (int64, bool, error) {
	query := `
		INSERT INTO events (
			external_id, sport_key, sport_title, commence_time, home_team, away_team, image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (external_id) DO UPDATE SET
			sport_key = EXCLUDED.sport_key,
			sport_title = EXCLUDED.sport_title,
			commence_time = EXCLUDED.commence_time,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS created, image_url, created_at, updated_at
	`

	var created bool
	err := r.db.Pool.QueryRow(ctx, query,
		event.ExternalID, event.SportKey, event.SportTitle, event.CommenceTime,
		event.HomeTeam, event.AwayTeam, event.ImageURL,
	).Scan(&event.ID, &created, &event.ImageURL, &event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		return 0, false, fmt.Errorf("failed to upsert event: %w", err)
	}

	return event.ID, created, nil
}

// UpsertBookmaker inserts or updates a bookmaker by (event_id, key)
func (r *EventRepository) UpsertBookmaker(ctx context.Context, bm *models.Bookmaker) (int64, error) {
	query := `
		INSERT INTO bookmakers (event_id, key, title, last_update)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, key) DO UPDATE SET
			title = EXCLUDED.title,
			last_update = EXCLUDED.last_update
		RETURNING id
	`

	if err := r.db.Pool.QueryRow(ctx, query, bm.EventID, bm.Key, bm.Title, bm.LastUpdate).Scan(&bm.ID); err != nil {
		return 0, fmt.Errorf("failed to upsert bookmaker: %w", err)
	}
	return bm.ID, nil
}

// UpsertMarket inserts or updates a market by (bookmaker_id, key)
func (r *EventRepository) UpsertMarket(ctx context.Context, m *models.Market) (int64, error) {
	query := `
		INSERT INTO markets (bookmaker_id, key, last_update)
		VALUES ($1, $2, $3)
		ON CONFLICT (bookmaker_id, key) DO UPDATE SET
			last_update = EXCLUDED.last_update
		RETURNING id
	`

	if err := r.db.Pool.QueryRow(ctx, query, m.BookmakerID, m.Key, m.LastUpdate).Scan(&m.ID); err != nil {
		return 0, fmt.Errorf("failed to upsert market: %w", err)
	}
	return m.ID, nil
}

// ReplaceOutcomes deletes every outcome of the market and inserts the new set
// in one transaction. Duplicate names in the payload are skipped.
func (r *EventRepository) ReplaceOutcomes(ctx context.Context, marketID int64, outcomes []models.Outcome) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM outcomes WHERE market_id = $1`, marketID); err != nil {
		return fmt.Errorf("failed to delete outcomes: %w", err)
	}

	if len(outcomes) > 0 {
		batch := &pgx.Batch{}
		for _, o := range outcomes {
			batch.Queue(`
				INSERT INTO outcomes (market_id, name, price, point)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (market_id, name) DO NOTHING
			`, marketID, o.Name, o.Price, o.Point)
		}

		br := tx.SendBatch(ctx, batch)
		for range outcomes {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("failed to insert outcome: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to close outcome batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit outcomes: %w", err)
	}
	return nil
}

const eventColumns = `id, external_id, sport_key, sport_title, commence_time,
		       home_team, away_team, image_url, created_at, updated_at`

func scanEvent(row pgx.Row, e *models.Event) error {
	return row.Scan(
		&e.ID, &e.ExternalID, &e.SportKey, &e.SportTitle, &e.CommenceTime,
		&e.HomeTeam, &e.AwayTeam, &e.ImageURL, &e.CreatedAt, &e.UpdatedAt,
	)
}

// GetEventGraph loads an event with its bookmakers, markets and outcomes.
// Returns nil, nil when the event does not exist.
func (r *EventRepository) GetEventGraph(ctx context.Context, eventID int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var event models.Event
	err := scanEvent(r.db.Pool.QueryRow(ctx, query, eventID), &event)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if err := r.loadGraphs(ctx, []*models.Event{&event}); err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventGraphByExternalID loads an event graph by the odds API id
func (r *EventRepository) GetEventGraphByExternalID(ctx context.Context, externalID string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE external_id = $1`

	var event models.Event
	err := scanEvent(r.db.Pool.QueryRow(ctx, query, externalID), &event)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event by external id: %w", err)
	}

	if err := r.loadGraphs(ctx, []*models.Event{&event}); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListUpcoming returns events of a sport starting at or after from, with graphs
func (r *EventRepository) ListUpcoming(ctx context.Context, sportKey string, from time.Time, limit int) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE sport_key = $1 AND commence_time >= $2
		ORDER BY commence_time ASC
		LIMIT $3
	`

	rows, err := r.db.Pool.Query(ctx, query, sportKey, from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var e models.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	if err := r.loadGraphs(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// loadGraphs attaches bookmakers, markets and outcomes to events in one query
func (r *EventRepository) loadGraphs(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Event, len(events))
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	query := `
		SELECT b.event_id, b.id, b.key, b.title, b.last_update,
		       m.id, m.key, m.last_update,
		       o.id, o.name, o.price, o.point
		FROM bookmakers b
		LEFT JOIN markets m ON m.bookmaker_id = b.id
		LEFT JOIN outcomes o ON o.market_id = m.id
		WHERE b.event_id = ANY($1)
		ORDER BY b.event_id, b.id, m.id, o.id
	`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load event graphs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bm        models.Bookmaker
			marketID  *int64
			marketKey *string
			marketUpd *time.Time
			outcomeID *int64
			name      *string
			price     *int
			point     *float64
		)
		if err := rows.Scan(
			&bm.EventID, &bm.ID, &bm.Key, &bm.Title, &bm.LastUpdate,
			&marketID, &marketKey, &marketUpd,
			&outcomeID, &name, &price, &point,
		); err != nil {
			return fmt.Errorf("failed to scan event graph row: %w", err)
		}

		event := byID[bm.EventID]
		n := len(event.Bookmakers)
		if n == 0 || event.Bookmakers[n-1].ID != bm.ID {
			event.Bookmakers = append(event.Bookmakers, bm)
			n++
		}
		if marketID == nil {
			continue
		}

		current := &event.Bookmakers[n-1]
		k := len(current.Markets)
		if k == 0 || current.Markets[k-1].ID != *marketID {
			current.Markets = append(current.Markets, models.Market{
				ID:          *marketID,
				BookmakerID: bm.ID,
				Key:         *marketKey,
				LastUpdate:  *marketUpd,
			})
			k++
		}
		if outcomeID == nil {
			continue
		}

		market := &current.Markets[k-1]
		market.Outcomes = append(market.Outcomes, models.Outcome{
			ID:       *outcomeID,
			MarketID: market.ID,
			Name:     *name,
			Price:    *price,
			Point:    point,
		})
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating event graph: %w", err)
	}
	return nil
}
