package ingest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"linesdesk/ingestion/internal/models"
)

type bookmakerKey struct {
	eventID int64
	key     string
}

type marketKey struct {
	bookmakerID int64
	key         string
}

// memStore is an in-memory EventStore and PredictionStore
type memStore struct {
	mu     sync.Mutex
	nextID int64

	events      map[string]*models.Event
	bookmakers  map[bookmakerKey]*models.Bookmaker
	markets     map[marketKey]*models.Market
	outcomes    map[int64][]models.Outcome
	predictions map[int64][]models.EventPrediction

	failEvents map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		events:      make(map[string]*models.Event),
		bookmakers:  make(map[bookmakerKey]*models.Bookmaker),
		markets:     make(map[marketKey]*models.Market),
		outcomes:    make(map[int64][]models.Outcome),
		predictions: make(map[int64][]models.EventPrediction),
		failEvents:  make(map[string]bool),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) UpsertEvent(ctx context.Context, event *models.Event) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failEvents[event.ExternalID] {
		return 0, false, errors.New("connection reset")
	}

	if existing, ok := s.events[event.ExternalID]; ok {
		existing.SportKey = event.SportKey
		existing.SportTitle = event.SportTitle
		existing.CommenceTime = event.CommenceTime
		existing.HomeTeam = event.HomeTeam
		existing.AwayTeam = event.AwayTeam
		return existing.ID, false, nil
	}

	row := *event
	row.ID = s.id()
	row.Bookmakers = nil
	s.events[event.ExternalID] = &row
	return row.ID, true, nil
}

func (s *memStore) UpsertBookmaker(ctx context.Context, bm *models.Bookmaker) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := bookmakerKey{bm.EventID, bm.Key}
	if existing, ok := s.bookmakers[k]; ok {
		existing.Title = bm.Title
		existing.LastUpdate = bm.LastUpdate
		return existing.ID, nil
	}
	row := *bm
	row.ID = s.id()
	s.bookmakers[k] = &row
	return row.ID, nil
}

func (s *memStore) UpsertMarket(ctx context.Context, m *models.Market) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := marketKey{m.BookmakerID, m.Key}
	if existing, ok := s.markets[k]; ok {
		existing.LastUpdate = m.LastUpdate
		return existing.ID, nil
	}
	row := *m
	row.ID = s.id()
	s.markets[k] = &row
	return row.ID, nil
}

func (s *memStore) ReplaceOutcomes(ctx context.Context, marketID int64, outcomes []models.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(outcomes))
	rows := make([]models.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if seen[o.Name] {
			continue
		}
		seen[o.Name] = true
		o.ID = s.id()
		o.MarketID = marketID
		rows = append(rows, o)
	}
	s.outcomes[marketID] = rows
	return nil
}

func (s *memStore) GetEventGraph(ctx context.Context, eventID int64) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var event *models.Event
	for _, e := range s.events {
		if e.ID == eventID {
			copied := *e
			event = &copied
		}
	}
	if event == nil {
		return nil, nil
	}

	for _, bm := range s.bookmakers {
		if bm.EventID != eventID {
			continue
		}
		b := *bm
		for _, m := range s.markets {
			if m.BookmakerID != b.ID {
				continue
			}
			mk := *m
			mk.Outcomes = append([]models.Outcome(nil), s.outcomes[m.ID]...)
			b.Markets = append(b.Markets, mk)
		}
		sort.Slice(b.Markets, func(i, j int) bool { return b.Markets[i].ID < b.Markets[j].ID })
		event.Bookmakers = append(event.Bookmakers, b)
	}
	sort.Slice(event.Bookmakers, func(i, j int) bool { return event.Bookmakers[i].ID < event.Bookmakers[j].ID })
	return event, nil
}

func (s *memStore) ExistsForEvent(ctx context.Context, eventID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.predictions[eventID]) > 0, nil
}

func (s *memStore) Create(ctx context.Context, p *models.EventPrediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.predictions[p.EventID] = append(s.predictions[p.EventID], *p)
	return nil
}

func (s *memStore) pastEventIDs(now time.Time) []int64 {
	var ids []int64
	for _, e := range s.events {
		if e.CommenceTime.Before(now) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func (s *memStore) DeleteForPastEvents(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, id := range s.pastEventIDs(now) {
		deleted += int64(len(s.predictions[id]))
		delete(s.predictions, id)
	}
	return deleted, nil
}

func (s *memStore) ListPastEvents(ctx context.Context, now time.Time) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Event
	for _, e := range s.events {
		if e.CommenceTime.Before(now) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *memStore) eventByExternalID(externalID string) *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[externalID]
}

func (s *memStore) predictionCount(eventID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.predictions[eventID])
}

func (s *memStore) rowCounts() (events, bookmakers, markets, outcomes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rows := range s.outcomes {
		outcomes += len(rows)
	}
	return len(s.events), len(s.bookmakers), len(s.markets), outcomes
}

const cannedPrediction = `article-title: Chiefs Handle Broncos
game-overview-heading: Division Clash
game-overview-description: A rivalry game in Kansas City.
home-team-analysis-heading: Chiefs
home-team-analysis-description: Efficient offense.
away-team-analysis-heading: Broncos
away-team-analysis-description: Strong pass rush.
betting-insight-heading: Spread
betting-insight-description: Chiefs lay 7.5.
final-prediction-heading: Chiefs 27-17
final-prediction-description: Kansas City covers.`

// fakeCompleter counts calls and returns a canned response
type fakeCompleter struct {
	calls atomic.Int32
	text  string
	err   error
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeCompleter) Model() string { return "test-model" }

// fakeFetcher serves canned events or errors per league
type fakeFetcher struct {
	mu     sync.Mutex
	events map[string][]models.EventInput
	errs   map[string]error
	calls  []string
}

func (f *fakeFetcher) FetchOdds(ctx context.Context, league models.League, from, to time.Time) ([]models.EventInput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, league.Name)
	if err := f.errs[league.Name]; err != nil {
		return nil, err
	}
	return f.events[league.Name], nil
}

// panicTrigger panics on every call
type panicTrigger struct{}

func (panicTrigger) Enrich(ctx context.Context, isNew bool, eventID int64) error {
	panic("nil completer")
}

func floatPtr(v float64) *float64 { return &v }

func sampleEvent(externalID string, commence time.Time) models.EventInput {
	updated := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	return models.EventInput{
		ID:           externalID,
		SportKey:     "americanfootball_nfl",
		SportTitle:   "NFL",
		CommenceTime: commence,
		HomeTeam:     "Kansas City Chiefs",
		AwayTeam:     "Denver Broncos",
		Bookmakers: []models.BookmakerInput{{
			Key:        "fanduel",
			Title:      "FanDuel",
			LastUpdate: updated,
			Markets: []models.MarketInput{
				{Key: models.MarketH2H, LastUpdate: updated, Outcomes: []models.OutcomeInput{
					{Name: "Kansas City Chiefs", Price: -280},
					{Name: "Denver Broncos", Price: 230},
				}},
				{Key: models.MarketSpreads, LastUpdate: updated, Outcomes: []models.OutcomeInput{
					{Name: "Kansas City Chiefs", Price: -110, Point: floatPtr(-7.5)},
					{Name: "Denver Broncos", Price: -110, Point: floatPtr(7.5)},
				}},
				{Key: models.MarketTotals, LastUpdate: updated, Outcomes: []models.OutcomeInput{
					{Name: "Over", Price: -105, Point: floatPtr(44.5)},
					{Name: "Under", Price: -115, Point: floatPtr(44.5)},
				}},
			},
		}},
	}
}
