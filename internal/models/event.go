package models

import (
	"time"
)

// Market keys offered by the odds API that the site displays
const (
	MarketH2H     = "h2h"
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
)

// DisplayMarkets lists the markets requested from the odds API
var DisplayMarkets = []string{MarketH2H, MarketSpreads, MarketTotals}

// Event represents one scheduled matchup from the odds source
type Event struct {
	ID           int64     `db:"id" json:"id"`
	ExternalID   string    `db:"external_id" json:"externalId"`
	SportKey     string    `db:"sport_key" json:"sportKey"`
	SportTitle   string    `db:"sport_title" json:"sportTitle"`
	CommenceTime time.Time `db:"commence_time" json:"commenceTime"`
	HomeTeam     string    `db:"home_team" json:"homeTeam"`
	AwayTeam     string    `db:"away_team" json:"awayTeam"`
	ImageURL     string    `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	// Populated by graph loads only
	Bookmakers []Bookmaker `db:"-" json:"bookmakers,omitempty"`
}

// Bookmaker is a sportsbook offering odds for an event, unique per (event, key)
type Bookmaker struct {
	ID         int64     `db:"id" json:"id"`
	EventID    int64     `db:"event_id" json:"eventId"`
	Key        string    `db:"key" json:"key"`
	Title      string    `db:"title" json:"title"`
	LastUpdate time.Time `db:"last_update" json:"lastUpdate"`

	Markets []Market `db:"-" json:"markets,omitempty"`
}

// Market is a bet type offered by a bookmaker, unique per (bookmaker, key)
type Market struct {
	ID          int64     `db:"id" json:"id"`
	BookmakerID int64     `db:"bookmaker_id" json:"bookmakerId"`
	Key         string    `db:"key" json:"key"`
	LastUpdate  time.Time `db:"last_update" json:"lastUpdate"`

	Outcomes []Outcome `db:"-" json:"outcomes,omitempty"`
}

// Outcome is one priced side of a market, unique per (market, name)
type Outcome struct {
	ID       int64    `db:"id" json:"id"`
	MarketID int64    `db:"market_id" json:"marketId"`
	Name     string   `db:"name" json:"name"`
	Price    int      `db:"price" json:"price"`
	Point    *float64 `db:"point" json:"point,omitempty"`
}

// Market returns the bookmaker's market with the given key, or nil
func (b *Bookmaker) Market(key string) *Market {
	for i := range b.Markets {
		if b.Markets[i].Key == key {
			return &b.Markets[i]
		}
	}
	return nil
}

// HasAllMarkets reports whether the bookmaker offers h2h, spreads and totals
func (b *Bookmaker) HasAllMarkets() bool {
	for _, key := range DisplayMarkets {
		if b.Market(key) == nil {
			return false
		}
	}
	return true
}

// IsPast reports whether the event started before now
func (e *Event) IsPast(now time.Time) bool {
	return e.CommenceTime.Before(now)
}
