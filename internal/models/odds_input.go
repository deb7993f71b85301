package models

import (
	"time"
)

// EventInput is one event record as returned by the odds API
type EventInput struct {
	ID           string           `json:"id"`
	SportKey     string           `json:"sport_key"`
	SportTitle   string           `json:"sport_title"`
	CommenceTime time.Time        `json:"commence_time"`
	HomeTeam     string           `json:"home_team"`
	AwayTeam     string           `json:"away_team"`
	Bookmakers   []BookmakerInput `json:"bookmakers"`
}

// BookmakerInput is a bookmaker entry inside an EventInput
type BookmakerInput struct {
	Key        string        `json:"key"`
	Title      string        `json:"title"`
	LastUpdate time.Time     `json:"last_update"`
	Markets    []MarketInput `json:"markets"`
}

// MarketInput is a market entry inside a BookmakerInput
type MarketInput struct {
	Key        string         `json:"key"`
	LastUpdate time.Time      `json:"last_update"`
	Outcomes   []OutcomeInput `json:"outcomes"`
}

// OutcomeInput is a priced outcome; Point is absent for h2h
type OutcomeInput struct {
	Name  string   `json:"name"`
	Price int      `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// ToEvent converts the API record to an Event row (no nested graph)
func (ei *EventInput) ToEvent() *Event {
	return &Event{
		ExternalID:   ei.ID,
		SportKey:     ei.SportKey,
		SportTitle:   ei.SportTitle,
		CommenceTime: ei.CommenceTime.UTC(),
		HomeTeam:     ei.HomeTeam,
		AwayTeam:     ei.AwayTeam,
	}
}

// ToBookmaker converts the API record to a Bookmaker row for the given event
func (bi *BookmakerInput) ToBookmaker(eventID int64) *Bookmaker {
	return &Bookmaker{
		EventID:    eventID,
		Key:        bi.Key,
		Title:      bi.Title,
		LastUpdate: bi.LastUpdate.UTC(),
	}
}

// ToMarket converts the API record to a Market row for the given bookmaker
func (mi *MarketInput) ToMarket(bookmakerID int64) *Market {
	return &Market{
		BookmakerID: bookmakerID,
		Key:         mi.Key,
		LastUpdate:  mi.LastUpdate.UTC(),
	}
}

// ToOutcomes converts the market's outcomes to rows for the given market
func (mi *MarketInput) ToOutcomes(marketID int64) []Outcome {
	outcomes := make([]Outcome, 0, len(mi.Outcomes))
	for _, oi := range mi.Outcomes {
		outcome := Outcome{
			MarketID: marketID,
			Name:     oi.Name,
			Price:    oi.Price,
		}
		if oi.Point != nil {
			point := *oi.Point
			outcome.Point = &point
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
