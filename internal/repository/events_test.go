//go:build integration

package repository

import (
	"testing"
	"time"

	"linesdesk/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(externalID string, commence time.Time) *models.Event {
	return &models.Event{
		ExternalID:   externalID,
		SportKey:     "americanfootball_nfl",
		SportTitle:   "NFL",
		CommenceTime: commence.UTC().Truncate(time.Second),
		HomeTeam:     "Kansas City Chiefs",
		AwayTeam:     "Denver Broncos",
		ImageURL:     "/images/leagues/nfl/kickoff.jpg",
	}
}

func TestEventRepository_UpsertReportsCreated(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	event := testEvent("it-evt-1", time.Now().Add(24*time.Hour))
	id, created, err := db.Events.UpsertEvent(ctx, event)
	require.NoError(t, err)
	assert.True(t, created)

	again := testEvent("it-evt-1", time.Now().Add(48*time.Hour))
	again.ImageURL = "/images/leagues/nfl/endzone.jpg"
	id2, created, err := db.Events.UpsertEvent(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, id2)
	assert.Equal(t, "/images/leagues/nfl/kickoff.jpg", again.ImageURL, "image is kept on update")
}

func TestEventRepository_ReplaceOutcomes(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	eventID, _, err := db.Events.UpsertEvent(ctx, testEvent("it-evt-2", time.Now().Add(24*time.Hour)))
	require.NoError(t, err)

	bmID, err := db.Events.UpsertBookmaker(ctx, &models.Bookmaker{
		EventID: eventID, Key: "fanduel", Title: "FanDuel", LastUpdate: time.Now().UTC(),
	})
	require.NoError(t, err)

	marketID, err := db.Events.UpsertMarket(ctx, &models.Market{
		BookmakerID: bmID, Key: models.MarketSpreads, LastUpdate: time.Now().UTC(),
	})
	require.NoError(t, err)

	spread := -7.5
	require.NoError(t, db.Events.ReplaceOutcomes(ctx, marketID, []models.Outcome{
		{Name: "Kansas City Chiefs", Price: -110, Point: &spread},
		{Name: "Denver Broncos", Price: -110},
	}))
	require.NoError(t, db.Events.ReplaceOutcomes(ctx, marketID, []models.Outcome{
		{Name: "Kansas City Chiefs", Price: -115, Point: &spread},
		{Name: "Kansas City Chiefs", Price: -999},
	}))

	graph, err := db.Events.GetEventGraph(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, graph.Bookmakers, 1)
	market := graph.Bookmakers[0].Market(models.MarketSpreads)
	require.NotNil(t, market)
	require.Len(t, market.Outcomes, 1)
	assert.Equal(t, -115, market.Outcomes[0].Price)
	assert.Equal(t, -7.5, *market.Outcomes[0].Point)

	// Upserts by composite key keep ids stable
	bmAgain, err := db.Events.UpsertBookmaker(ctx, &models.Bookmaker{
		EventID: eventID, Key: "fanduel", Title: "FanDuel Sportsbook", LastUpdate: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, bmID, bmAgain)
}

func TestPredictionRepository_PrunePastEvents(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	now := time.Now()
	pastID, _, err := db.Events.UpsertEvent(ctx, testEvent("it-past", now.Add(-time.Hour)))
	require.NoError(t, err)
	futureID, _, err := db.Events.UpsertEvent(ctx, testEvent("it-future", now.Add(time.Hour)))
	require.NoError(t, err)

	for _, id := range []int64{pastID, futureID} {
		require.NoError(t, db.Predictions.Create(ctx, &models.EventPrediction{
			EventID:  id,
			Title:    "Preview",
			Sections: []models.PredictionSection{{Key: "game-overview", Heading: "H", Description: "D"}},
		}))
	}

	past, err := db.Predictions.ListPastEvents(ctx, now)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, "it-past", past[0].ExternalID)

	deleted, err := db.Predictions.DeleteForPastEvents(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	exists, err := db.Predictions.ExistsForEvent(ctx, pastID)
	require.NoError(t, err)
	assert.False(t, exists)

	kept, err := db.Predictions.GetLatestForEvent(ctx, futureID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, "H", kept.Section("game-overview").Heading)
}
