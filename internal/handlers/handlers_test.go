package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linesdesk/ingestion/internal/ingest"
	"linesdesk/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEvents struct {
	events []*models.Event
	err    error
	lookup int
}

func (m *mockEvents) GetEventGraphByExternalID(ctx context.Context, externalID string) (*models.Event, error) {
	m.lookup++
	if m.err != nil {
		return nil, m.err
	}
	for _, e := range m.events {
		if e.ExternalID == externalID {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockEvents) ListUpcoming(ctx context.Context, sportKey string, from time.Time, limit int) ([]*models.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Event
	for _, e := range m.events {
		if e.SportKey == sportKey {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockPredictions struct {
	byEvent map[int64]*models.EventPrediction
}

func (m *mockPredictions) GetLatestForEvent(ctx context.Context, eventID int64) (*models.EventPrediction, error) {
	return m.byEvent[eventID], nil
}

type memCache struct {
	data map[string][]byte
}

func (c *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

type mockSyncer struct {
	report *ingest.Report
	err    error
	calls  int
}

func (m *mockSyncer) Run(ctx context.Context) (*ingest.Report, error) {
	m.calls++
	return m.report, m.err
}

type failingPinger struct{}

func (failingPinger) Health(ctx context.Context) error { return errors.New("down") }

func h2hOnlyEvent() *models.Event {
	return &models.Event{
		ID:           11,
		ExternalID:   "evt-h2h",
		SportKey:     "americanfootball_nfl",
		SportTitle:   "NFL",
		HomeTeam:     "Kansas City Chiefs",
		AwayTeam:     "Denver Broncos",
		CommenceTime: time.Now().Add(24 * time.Hour).UTC(),
		Bookmakers: []models.Bookmaker{{
			Key:   "draftkings",
			Title: "DraftKings",
			Markets: []models.Market{{Key: models.MarketH2H, Outcomes: []models.Outcome{
				{Name: "Kansas City Chiefs", Price: -210},
				{Name: "Denver Broncos", Price: 180},
			}}},
		}},
	}
}

func newTestRouter(deps Deps) http.Handler {
	return NewRouter(NewHandler(deps), []string{"*"})
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(Deps{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	router = newTestRouter(Deps{Checks: map[string]Pinger{"database": failingPinger{}}})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetEventOdds_MoneylineOnly(t *testing.T) {
	events := &mockEvents{events: []*models.Event{h2hOnlyEvent()}}
	router := newTestRouter(Deps{Events: events})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/evt-h2h/odds", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body EventOdds
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Available)
	assert.Equal(t, "nfl", body.League)
	require.NotNil(t, body.Odds)
	assert.Equal(t, "−210", body.Odds.Moneyline.Home)
	assert.Equal(t, "+180", body.Odds.Moneyline.Away)
	assert.Equal(t, "-", body.Odds.Spread.Home.Point)
	assert.Equal(t, "—", body.Odds.Total.Over.Price)
}

func TestGetEventOdds_NoBookmakersIsUnavailable(t *testing.T) {
	event := h2hOnlyEvent()
	event.Bookmakers = nil
	router := newTestRouter(Deps{Events: &mockEvents{events: []*models.Event{event}}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/evt-h2h/odds", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body EventOdds
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Available)
	assert.Nil(t, body.Odds)
}

func TestGetEventOdds_NotFound(t *testing.T) {
	router := newTestRouter(Deps{Events: &mockEvents{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/missing/odds", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEventOdds_ServedFromCache(t *testing.T) {
	events := &mockEvents{events: []*models.Event{h2hOnlyEvent()}}
	router := newTestRouter(Deps{Events: events, Cache: &memCache{data: map[string][]byte{}}})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/evt-h2h/odds", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, events.lookup, "second read hits the cache")
}

func TestListEvents(t *testing.T) {
	events := &mockEvents{events: []*models.Event{h2hOnlyEvent()}}
	router := newTestRouter(Deps{Events: events})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events?league=NFL", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		League string      `json:"league"`
		Events []EventOdds `json:"events"`
		Count  int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "nfl", body.League)
	assert.Equal(t, 1, body.Count)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events?league=cricket", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEventPrediction(t *testing.T) {
	event := h2hOnlyEvent()
	preds := &mockPredictions{byEvent: map[int64]*models.EventPrediction{
		event.ID: {EventID: event.ID, Title: "Chiefs Roll"},
	}}
	router := newTestRouter(Deps{Events: &mockEvents{events: []*models.Event{event}}, Predictions: preds})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/evt-h2h/prediction", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":true`)
	assert.Contains(t, rec.Body.String(), "Chiefs Roll")
}

func TestTriggerSync(t *testing.T) {
	syncer := &mockSyncer{report: &ingest.Report{
		RunID:   "run-1",
		Success: true,
		Summary: []ingest.LeagueSummary{{League: "nfl", Events: 2, Created: 1}},
	}}
	router := newTestRouter(Deps{Syncer: syncer, AdminToken: "secret"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/sync", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, syncer.calls)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/sync", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body SyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "run-1", body.RunID)
	require.Len(t, body.Summary, 1)
	assert.Equal(t, 1, body.Summary[0].Created)
}

func TestTriggerSync_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"already running", ingest.ErrSyncInProgress, http.StatusConflict},
		{"failure", errors.New("database gone"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(Deps{Syncer: &mockSyncer{err: tt.err}})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/sync", nil))
			assert.Equal(t, tt.status, rec.Code)

			var body SyncResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.err.Error(), body.Error)
		})
	}
}
